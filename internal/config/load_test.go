package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MENUPICK_LLM_GEMINI_API_KEY", "test-api-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "uploads", cfg.Server.UploadDir)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "test-api-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.ModelName)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 2, cfg.LLM.RetryDelaySeconds)
	assert.Equal(t, 0, cfg.Worker.Concurrency)
	assert.Equal(t, 5, cfg.Worker.PollIntervalSeconds)
	assert.Equal(t, 30, cfg.Worker.PreferencesTimeoutMinutes)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("MENUPICK_LLM_GEMINI_API_KEY", "test-api-key")
	t.Setenv("MENUPICK_SERVER_PORT", "8080")
	t.Setenv("MENUPICK_SERVER_LOG_LEVEL", "debug")
	t.Setenv("MENUPICK_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("MENUPICK_LLM_MODEL_NAME", "gemini-2.5-pro")
	t.Setenv("MENUPICK_WORKER_CONCURRENCY", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.ModelName)
	assert.Equal(t, 8, cfg.Worker.Concurrency)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("MENUPICK_LLM_GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "GeminiAPIKey")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("MENUPICK_LLM_GEMINI_API_KEY", "test-api-key")

	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: "MENUPICK_SERVER_PORT", value: "70000"},
		{name: "unknown log level", key: "MENUPICK_SERVER_LOG_LEVEL", value: "verbose"},
		{name: "zero poll interval", key: "MENUPICK_WORKER_POLL_INTERVAL_SECONDS", value: "0"},
		{name: "zero preferences timeout", key: "MENUPICK_WORKER_PREFERENCES_TIMEOUT_MINUTES", value: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
