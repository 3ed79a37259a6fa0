package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "ADAPTIQ_GEMINI_API_KEY", "ADAPTIQ_GEMINI_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ADAPTIQ_SESSION_SECRET", "")
	t.Setenv("SECRET_KEY", "legacy")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "legacy", cfg.SessionSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 120, cfg.RateLimit.Max)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.LLMEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ADAPTIQ_ADDR", "127.0.0.1:9000")
	t.Setenv("ADAPTIQ_SESSION_SECRET", "s")
	t.Setenv("ADAPTIQ_SESSION_TTL", "2h")
	t.Setenv("ADAPTIQ_COOKIE_SECURE", "true")
	t.Setenv("ADAPTIQ_RATE_LIMIT", "5")
	t.Setenv("ADAPTIQ_RATE_WINDOW", "10s")
	t.Setenv("ADAPTIQ_LOG_LEVEL", "debug")
	t.Setenv("GEMINI_API_KEY", "real-key")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, RateLimit{Max: 5, Window: 10 * time.Second}, cfg.RateLimit)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.LLMEnabled)
	assert.Equal(t, "real-key", cfg.LLM.APIKey)
}

func TestPlaceholderKeyMeansMockMode(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("GEMINI_API_KEY", "your-api-key")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.LLMEnabled)
}

func TestFromEnvErrors(t *testing.T) {
	tests := map[string]string{
		"ADAPTIQ_SESSION_TTL":   "forever",
		"ADAPTIQ_COOKIE_SECURE": "maybe",
		"ADAPTIQ_RATE_LIMIT":    "lots",
		"ADAPTIQ_LOG_LEVEL":     "chatty",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			clearLLMEnv(t)
			t.Setenv(key, val)
			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{SessionSecret: "s", RateLimit: RateLimit{Max: -1}}.Validate())
	assert.NoError(t, Config{SessionSecret: "s"}.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ADAPTIQ_TEST_FROM_FILE=hello\n"), 0o600))
	t.Setenv("ADAPTIQ_TEST_FROM_FILE", "")
	os.Unsetenv("ADAPTIQ_TEST_FROM_FILE")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("ADAPTIQ_TEST_FROM_FILE"))
}
