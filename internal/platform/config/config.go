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
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	AppEnv         string `env:"APP_ENV" default:"development"`
	AppURL         string `env:"APP_URL" default:"http://localhost:8080"`
	Port           string `env:"PORT" default:"8080"`
	StorageBackend string `env:"STORAGE_BACKEND" default:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
	RedisURL       string `env:"REDIS_URL"`
	LogLevel       string `env:"LOG_LEVEL" default:"info"`
	LogFormat      string `env:"LOG_FORMAT" default:"text"`
	ActorHeader    string `env:"ACTOR_HEADER" default:"X-Actor-ID"`

	ScoreTimeTolerance time.Duration `env:"SCORE_TIME_TOLERANCE" default:"6h"`
	ScoreTypoTolerance int           `env:"SCORE_TYPO_TOLERANCE" default:"1"`

	SubmissionCooldown time.Duration `env:"SUBMISSION_COOLDOWN" default:"30s"`
	QuestionCacheTTL   time.Duration `env:"QUESTION_CACHE_TTL" default:"10m"`

	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" default:"5"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" default:"10"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
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

func validate(cfg *Config) error {
	switch cfg.StorageBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, cfg.StorageBackend)
	}

	if cfg.IsProduction() && cfg.DatabaseURL != "" {
		if err := validateSSLMode(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	if strings.TrimSpace(cfg.ActorHeader) == "" {
		return errors.New("ACTOR_HEADER must not be empty")
	}
	if cfg.ScoreTimeTolerance <= 0 {
		return errors.New("SCORE_TIME_TOLERANCE must be positive")
	}
	if cfg.ScoreTypoTolerance < 0 || cfg.ScoreTypoTolerance > 3 {
		return fmt.Errorf("SCORE_TYPO_TOLERANCE must be between 0 and 3, got %d", cfg.ScoreTypoTolerance)
	}
	if cfg.SubmissionCooldown < 0 {
		return errors.New("SUBMISSION_COOLDOWN must not be negative")
	}
	if cfg.RateLimitPerSecond <= 0 || cfg.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive")
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
