package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "./taskflow.db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "dummy", cfg.Tts.Type)
	assert.False(t, cfg.Notifications.Speech.Enabled)
	assert.Equal(t, 60, cfg.Notifications.ReminderMinutes)
	assert.Equal(t, "he-IL-Wavenet-A", cfg.Notifications.Speech.Voice)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8080"}, cfg.Server.AllowedOrigins)
}

func TestLoadWith_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
database:
  driver: postgres
  dsn: postgres://taskflow@localhost/taskflow?sslmode=disable
gamification:
  timezone: UTC
notifications:
  reminder_minutes: 30
  speech:
    enabled: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("TASKFLOW_LOG_LEVEL", "debug")
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://taskflow@localhost/taskflow?sslmode=disable", cfg.Database.DSN)
	assert.True(t, cfg.Notifications.Speech.Enabled)
	assert.Equal(t, 30, cfg.Notifications.ReminderMinutes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)

	loc, err := cfg.Gamification.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestGamificationLocation(t *testing.T) {
	loc, err := GamificationConfig{Timezone: "Local"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = GamificationConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	_, err = GamificationConfig{Timezone: "Mars/Olympus_Mons"}.Location()
	assert.Error(t, err)
}
