package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath         string        `env:"DB_PATH" envDefault:"data/quizboard.db"`
	LogLevel       slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	RedisURL       string        `env:"REDIS_URL"`
	TimeoutTick    time.Duration `env:"TIMEOUT_TICK" envDefault:"250ms"`
	SeedQuestions  bool          `env:"SEED_QUESTIONS" envDefault:"true"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	SPADir         string        `env:"SPA_DIR"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.TimeoutTick <= 0 {
		return nil, fmt.Errorf("TIMEOUT_TICK must be positive, got %s", cfg.TimeoutTick)
	}
	return &cfg, nil
}
