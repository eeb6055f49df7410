package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("OPENAI_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("OPENAI_TIMEOUT", "")
	t.Setenv("MIGRATIONS_ENABLED", "")
	t.Setenv("SERVER_PORT", "")

	cfg := LoadConfig()

	assert.Equal(t, "localhost", cfg.PostgresHost)
	assert.Equal(t, "", cfg.OpenAIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 60*time.Second, cfg.OpenAITimeout)
	assert.True(t, cfg.MigrationsEnabled)
	assert.Equal(t, "8080", cfg.ServerPort)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("OPENAI_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4.1")
	t.Setenv("OPENAI_TIMEOUT", "15s")
	t.Setenv("MIGRATIONS_ENABLED", "false")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg := LoadConfig()

	assert.Equal(t, "db.internal", cfg.PostgresHost)
	assert.Equal(t, "sk-test", cfg.OpenAIKey)
	assert.Equal(t, "gpt-4.1", cfg.OpenAIModel)
	assert.Equal(t, 15*time.Second, cfg.OpenAITimeout)
	assert.False(t, cfg.MigrationsEnabled)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty uses default", "", 5 * time.Second},
		{"duration string", "2m", 2 * time.Minute},
		{"plain seconds", "30", 30 * time.Second},
		{"garbage uses default", "soon", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, getEnvDuration("TEST_DURATION", 5*time.Second))
		})
	}
}

func TestGetEnvBoolInvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_BOOL", "maybe")
	assert.True(t, getEnvBool("TEST_BOOL", true))
}
