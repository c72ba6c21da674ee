// Package pagination parses skip/limit query parameters for list endpoints.
package pagination

import (
	"article-service/pkg/config"
)

// Config holds pagination configuration settings.
type Config struct {
	DefaultLimit int // Items per page when limit is omitted
	MaxLimit     int // Largest accepted limit
}

// DefaultConfig returns limit=20, max=100.
func DefaultConfig() Config {
	return Config{
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

// LoadFromEnv loads pagination config from environment variables.
// Supported environment variables:
//   - PAGINATION_DEFAULT_LIMIT: Default items per page
//   - PAGINATION_MAX_LIMIT: Maximum items per page
//
// Non-positive values, or a default above the maximum, fall back to DefaultConfig.
func LoadFromEnv() Config {
	def := DefaultConfig()
	cfg := Config{
		DefaultLimit: config.GetEnvInt("PAGINATION_DEFAULT_LIMIT", def.DefaultLimit),
		MaxLimit:     config.GetEnvInt("PAGINATION_MAX_LIMIT", def.MaxLimit),
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = min(def.DefaultLimit, cfg.MaxLimit)
	}
	return cfg
}
