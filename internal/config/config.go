// Package config loads server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/adaptiq/internal/llm"
)

// DefaultEnvFile is loaded when no --env-file is given.
const DefaultEnvFile = ".env"

// RateLimit bounds requests per client.
type RateLimit struct {
	Max    int
	Window time.Duration
}

// Config is the server configuration.
type Config struct {
	ListenAddr     string
	DBPath         string
	SessionSecret  string
	SessionTTL     time.Duration
	CookieSecure   bool
	AllowedOrigins string
	RedisURL       string
	RateLimit      RateLimit
	LogLevel       slog.Level
	DedupLimit     int

	// LLM configures the Gemini backend. LLMEnabled is false when no
	// usable key is configured, which selects mock behavior.
	LLM        llm.Config
	LLMEnabled bool
}

// LoadEnvFile loads variables from path into the process environment.
// Existing variables are not overridden. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from ADAPTIQ_* environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:     envOr("ADAPTIQ_ADDR", ":8080"),
		DBPath:         os.Getenv("ADAPTIQ_DB"),
		SessionSecret:  firstEnv("ADAPTIQ_SESSION_SECRET", "SECRET_KEY"),
		SessionTTL:     24 * time.Hour,
		AllowedOrigins: os.Getenv("ADAPTIQ_ALLOWED_ORIGINS"),
		RedisURL:       os.Getenv("REDIS_URL"),
		RateLimit:      RateLimit{Max: 120, Window: time.Minute},
		LogLevel:       slog.LevelInfo,
		DedupLimit:     8,
		LLM:            llm.ConfigFromEnv(),
	}
	cfg.LLMEnabled = cfg.LLM.HasCredential()

	var err error
	if cfg.SessionTTL, err = durationEnv("ADAPTIQ_SESSION_TTL", cfg.SessionTTL); err != nil {
		return cfg, err
	}
	if cfg.CookieSecure, err = boolEnv("ADAPTIQ_COOKIE_SECURE", false); err != nil {
		return cfg, err
	}
	if cfg.RateLimit.Max, err = intEnv("ADAPTIQ_RATE_LIMIT", cfg.RateLimit.Max); err != nil {
		return cfg, err
	}
	if cfg.RateLimit.Window, err = durationEnv("ADAPTIQ_RATE_WINDOW", cfg.RateLimit.Window); err != nil {
		return cfg, err
	}
	if cfg.DedupLimit, err = intEnv("ADAPTIQ_DEDUP_LIMIT", cfg.DedupLimit); err != nil {
		return cfg, err
	}
	if v := os.Getenv("ADAPTIQ_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("ADAPTIQ_LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}

// Validate checks settings the server cannot run without.
func (c Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret is required (set ADAPTIQ_SESSION_SECRET)")
	}
	if c.RateLimit.Max < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.LLMEnabled {
		if err := c.LLM.Validate(); err != nil {
			return fmt.Errorf("llm: %w", err)
		}
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
