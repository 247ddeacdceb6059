package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file,
// panicking on failure. Intended for use in package init.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // optional: missing .env is not an error

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and an optional
// .env file into cfg.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // optional: missing .env is not an error

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}
