package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string `env:"DB_PATH" envDefault:"cardbattle.db"`
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	AuthSecret string `env:"AUTH_SECRET"`

	HouseUserID string `env:"HOUSE_USER_ID" envDefault:"house"`
	HouseDeckID string `env:"HOUSE_DECK_ID" envDefault:"house"`

	// CatalogPath and CatalogURL override the embedded seed; the path wins when both are set.
	CatalogPath string `env:"CATALOG_PATH"`
	CatalogURL  string `env:"CATALOG_URL"`

	PlayMaxRetries uint64        `env:"PLAY_MAX_RETRIES" envDefault:"3"`
	PlayRetryBase  time.Duration `env:"PLAY_RETRY_BASE" envDefault:"20ms"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET is required")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("house_deck_id", cfg.HouseDeckID).
		Uint64("play_max_retries", cfg.PlayMaxRetries).
		Dur("play_retry_base", cfg.PlayRetryBase).
		Msg("configuration loaded")

	return cfg, nil
}

var Module = fx.Provide(Load)
