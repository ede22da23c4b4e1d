package config_test

import (
	"testing"

	"github.com/phrazzld/insight-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Load reads the process environment, so these tests cannot run in parallel
// with each other.
func TestLoad(t *testing.T) {
	setRequiredEnv := func(t *testing.T) {
		t.Setenv("INSIGHT_DATABASE_URL", "postgres://localhost:5432/insight_test")
		t.Setenv("INSIGHT_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("INSIGHT_LLM_GEMINI_API_KEY", "test-api-key")
	}

	t.Run("applies defaults for optional settings", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Server.LogLevel)
		assert.Equal(t, 30, cfg.Auth.TokenLifetimeMinutes)
		assert.Equal(t, 2, cfg.LLM.MaxRetries)
		assert.Equal(t, 30, cfg.LLM.RequestTimeoutSeconds)
		assert.Equal(t, 20000, cfg.LLM.MaxInputLength)
		assert.Equal(t, 2, cfg.Task.WorkerCount)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("INSIGHT_SERVER_PORT", "9000")
		t.Setenv("INSIGHT_SERVER_LOG_LEVEL", "debug")
		t.Setenv("INSIGHT_LLM_MAX_RETRIES", "4")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Server.LogLevel)
		assert.Equal(t, 4, cfg.LLM.MaxRetries)
	})

	t.Run("fails without a database URL", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("INSIGHT_DATABASE_URL", "")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Database.URL")
	})

	t.Run("rejects a short JWT secret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("INSIGHT_AUTH_JWT_SECRET", "too-short")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWTSecret")
	})

	t.Run("rejects an unknown log level", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("INSIGHT_SERVER_LOG_LEVEL", "verbose")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LogLevel")
	})
}
