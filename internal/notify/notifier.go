package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atiaron/taskflow/internal/logger"
	"github.com/atiaron/taskflow/internal/models"
)

// Notifier is a platform notification sink. Delivery is best-effort.
type Notifier interface {
	Show(ctx context.Context, n models.Notification) error
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Show(context.Context, models.Notification) error { return nil }

// LogNotifier writes notifications to the log; used when no client channel is configured.
type LogNotifier struct {
	logger *logger.Log
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logger.New().With(zap.String("component", "notify"))}
}

func (l *LogNotifier) Show(_ context.Context, n models.Notification) error {
	l.logger.Info(fmt.Sprintf("notification: %s", n.Title), zap.String("tag", n.Tag), zap.String("body", n.Body))
	return nil
}

// Multi fans a notification out to several sinks and returns the first error.
type Multi []Notifier

func (m Multi) Show(ctx context.Context, n models.Notification) error {
	var first error
	for _, sink := range m {
		if err := sink.Show(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
