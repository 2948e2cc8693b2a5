package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Narration provider. Key and model are required; the process
	// refuses to start without them. Referer is optional and only
	// feeds OpenRouter's app attribution headers.
	OpenRouterAPIKey  string
	ModelName         string
	OpenRouterReferer string

	// SessionSecret signs HTTP session cookies. Generated at startup
	// when unset, which means sessions do not survive a restart.
	SessionSecret string

	// RedisURL enables the Redis-backed session store when set.
	// Without it sessions are held in process memory.
	RedisURL string

	StaticDir string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          parseLogLevel(getEnv("LOG_LEVEL", "info")),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		ModelName:         os.Getenv("MODEL"),
		OpenRouterReferer: os.Getenv("OPENROUTER_REFERER"),
		SessionSecret:     getEnv("SESSION_SECRET", uuid.NewString()),
		RedisURL:          os.Getenv("REDIS_URL"),
		StaticDir:         getEnv("STATIC_DIR", "./web"),
	}

	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("MODEL is required")
	}

	return cfg, nil
}

// IsProduction reports whether the production flag is set. It controls
// JSON logging and the Secure attribute on session cookies.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
