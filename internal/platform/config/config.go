package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/pscheid92/anchorkeep/internal/domain"
)

// Anchor store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	AppEnv        string        `env:"APP_ENV" default:"development"`
	Port          string        `env:"PORT" default:"8080"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"12h"`
	LogLevel      string        `env:"LOG_LEVEL" default:"info"`
	LogFormat     string        `env:"LOG_FORMAT" default:"text"`

	AnchorStore      string        `env:"ANCHOR_STORE" default:"memory"`
	AnchorTTL        time.Duration `env:"ANCHOR_TTL" default:"30m"`
	AnchorRecallMode string        `env:"ANCHOR_RECALL_MODE" default:"peek"`
	AnchorRateLimit  float64       `env:"ANCHOR_RATE_LIMIT" default:"10"`
	AnchorRateBurst  int           `env:"ANCHOR_RATE_BURST" default:"20"`

	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction gates secure cookies.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) RecallMode() domain.RecallMode {
	return domain.RecallMode(c.AnchorRecallMode)
}

func validate(cfg *Config) error {
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(cfg.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}

	switch cfg.AnchorStore {
	case StoreMemory:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required when ANCHOR_STORE=redis")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when ANCHOR_STORE=postgres")
		}
		if cfg.IsProduction() {
			if err := validateSSLMode(cfg.DatabaseURL); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("ANCHOR_STORE must be one of memory, redis, postgres, got %q", cfg.AnchorStore)
	}

	if !cfg.RecallMode().Valid() {
		return fmt.Errorf("ANCHOR_RECALL_MODE must be peek or consume, got %q", cfg.AnchorRecallMode)
	}
	if cfg.AnchorTTL <= 0 {
		return errors.New("ANCHOR_TTL must be positive")
	}
	if cfg.AnchorRateLimit <= 0 || cfg.AnchorRateBurst < 1 {
		return errors.New("ANCHOR_RATE_LIMIT must be positive and ANCHOR_RATE_BURST at least 1")
	}
	return nil
}

func validateSSLMode(databaseURL string) error {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}
	mode := strings.ToLower(u.Query().Get("sslmode"))
	if mode == "disable" || mode == "allow" {
		return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
	}
	return nil
}
