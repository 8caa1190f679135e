package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Log           LogConfig           `mapstructure:"log"`
	Gamification  GamificationConfig  `mapstructure:"gamification"`
	Session       SessionConfig       `mapstructure:"session"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Ollama        OllamaConfig        `mapstructure:"ollama"`
	OpenAI        OpenAIConfig        `mapstructure:"openai"`
	Tts           TtsConfig           `mapstructure:"tts"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite3" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Calendar dates and hours of day are evaluated in Timezone.
type GamificationConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location resolves the configured timezone, falling back to time.Local.
func (g GamificationConfig) Location() (*time.Location, error) {
	if g.Timezone == "" || strings.EqualFold(g.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid gamification.timezone %q: %w", g.Timezone, err)
	}
	return loc, nil
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
}

// LLM provider selection
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "ollama" or "openai"
}

type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`   // Optional, defaults to OpenAI API
	MaxTokens int    `mapstructure:"max_tokens"` // Optional, defaults to model's max
	Timeout   int    `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type TtsConfig struct {
	Type            string `mapstructure:"type"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type NotificationsConfig struct {
	// ReminderMinutes is how long before a due date the task reminder fires.
	ReminderMinutes int          `mapstructure:"reminder_minutes"`
	Speech          SpeechConfig `mapstructure:"speech"`
}

type SpeechConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Voice   string `mapstructure:"voice"`
}

// SetDefaults registers every default on v. Exposed so tests and the CLI share them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "./taskflow.db")

	v.SetDefault("log.level", "info")

	v.SetDefault("gamification.timezone", "Local")

	v.SetDefault("session.secret", "change-this-in-production")

	v.SetDefault("llm.provider", "ollama")

	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2")
	v.SetDefault("ollama.timeout", 50)

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", 30)
	v.SetDefault("openai.max_tokens", 1000)

	v.SetDefault("tts.type", "dummy")

	v.SetDefault("notifications.reminder_minutes", 60)
	v.SetDefault("notifications.speech.enabled", false)
	v.SetDefault("notifications.speech.voice", "he-IL-Wavenet-A")
}

// Load reads config.yaml (if any) from the working directory or ./config,
// then applies TASKFLOW_* environment overrides.
func Load() (*Config, error) {
	return LoadWith(viper.GetViper())
}

func LoadWith(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	SetDefaults(v)

	v.BindEnv("openai.api_key", "TASKFLOW_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("llm.provider", "TASKFLOW_LLM_PROVIDER", "LLM_PROVIDER")
	v.BindEnv("server.port", "TASKFLOW_SERVER_PORT", "PORT")

	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
