package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var (
	mu   sync.RWMutex
	base *zap.Logger
	lvl  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	base = build()
}

func build() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.DisableStacktrace = true
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// SetGlobalLevel changes the level of every Log, existing ones included.
func SetGlobalLevel(level LogLevel) {
	switch LogLevel(strings.ToLower(string(level))) {
	case LogLevelDebug:
		lvl.SetLevel(zapcore.DebugLevel)
	case LogLevelWarn:
		lvl.SetLevel(zapcore.WarnLevel)
	case LogLevelError:
		lvl.SetLevel(zapcore.ErrorLevel)
	default:
		lvl.SetLevel(zapcore.InfoLevel)
	}
}

// Replace swaps the underlying zap logger; tests use it with zaptest/observer.
func Replace(l *zap.Logger) func() {
	mu.Lock()
	prev := base
	base = l
	mu.Unlock()
	return func() {
		mu.Lock()
		base = prev
		mu.Unlock()
	}
}

func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

type Log struct {
	fields []zap.Field
}

func New() *Log {
	return &Log{}
}

// With returns a child Log carrying extra structured fields.
func (l *Log) With(fields ...zap.Field) *Log {
	merged := make([]zap.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Log{fields: merged}
}

func (l *Log) WithError(err error) *Log {
	return l.With(zap.Error(err))
}

func (l *Log) zap() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func (l *Log) Debug(msg string, fields ...zap.Field) {
	l.zap().Debug(msg, append(l.fields, fields...)...)
}

func (l *Log) Info(msg string, fields ...zap.Field) {
	l.zap().Info(msg, append(l.fields, fields...)...)
}

func (l *Log) Warn(msg string, fields ...zap.Field) {
	l.zap().Warn(msg, append(l.fields, fields...)...)
}

func (l *Log) Error(msg string, fields ...zap.Field) {
	l.zap().Error(msg, append(l.fields, fields...)...)
}
