package llm

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// PlaceholderAPIKey is the value shipped in sample .env files. It counts as
// no key at all.
const PlaceholderAPIKey = "your-api-key"

// Config configures the Gemini backend and its decorators.
type Config struct {
	APIKey string

	// Model is a Gemini model ID or one of the aliases in modelAliases.
	Model string

	Retry RetryConfig

	// Timeout bounds one Generate call, retries included. Zero disables it.
	Timeout time.Duration
}

// RetryConfig controls the retry decorator. MaxAttempts of 1 is a single
// call.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig has no key, so the app starts in mock mode. LLM failures
// surface to the caller, so there is a single attempt.
func DefaultConfig() Config {
	return Config{
		Model: "gemini-flash",
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv reads the backend settings. The key comes from
// ADAPTIQ_GEMINI_API_KEY and falls back to the vendor's GEMINI_API_KEY.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.APIKey = apiKeyEnv("ADAPTIQ_GEMINI_API_KEY")
	if cfg.APIKey == "" {
		cfg.APIKey = apiKeyEnv("GEMINI_API_KEY")
	}
	if m := os.Getenv("ADAPTIQ_GEMINI_MODEL"); m != "" {
		cfg.Model = m
	}
	if v := os.Getenv("ADAPTIQ_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("ADAPTIQ_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

func apiKeyEnv(name string) string {
	if k := os.Getenv(name); usableKey(k) {
		return k
	}
	return ""
}

func usableKey(k string) bool {
	return k != "" && k != PlaceholderAPIKey
}

// HasCredential reports whether a real API key is configured. Without one
// the app serves mock questions and grades by exact match.
func (c Config) HasCredential() bool {
	return usableKey(c.APIKey)
}

func (c Config) Validate() error {
	if !c.HasCredential() {
		return errors.New("ADAPTIQ_GEMINI_API_KEY (or GEMINI_API_KEY) is required")
	}
	if c.Model == "" {
		return errors.New("gemini model must not be empty")
	}
	if c.Timeout < 0 {
		return errors.New("ADAPTIQ_LLM_TIMEOUT must not be negative")
	}
	return nil
}
