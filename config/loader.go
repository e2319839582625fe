package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults and environment variables.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file, if present
//  3. env (prefix SPIELPLAN_)
func Load() (*Config, error) {
	// Missing .env is fine; env vars and defaults still apply.
	_ = godotenv.Load()

	base := New()

	k := koanf.New(".")

	// Map env keys like SPIELPLAN_CACHE_DB_PATH -> cache_db_path.
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("SPIELPLAN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "spielplan_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
