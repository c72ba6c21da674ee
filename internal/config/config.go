// Package config assembles the service configuration.
//
// Values are layered: built-in defaults, then an optional YAML file named by
// CONFIG_FILE, then environment variables. A .env file is read first to seed
// the environment; variables already set in the process win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"article-service/pkg/config"
	"article-service/pkg/ratelimit"
)

// Rate limit counter backends.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// DefaultEnvFile is read by Load when no other file is named.
const DefaultEnvFile = ".env"

// Config is the full process configuration.
type Config struct {
	Port        int
	DatabaseURL string
	RedisURL    string
	// APIKey gates the article routes. Empty disables the gate.
	APIKey    string
	APIPrefix string
	LogLevel  string

	CacheTTL     time.Duration
	CacheTimeout time.Duration

	// RequestTimeout bounds each request; zero disables the timeout.
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	OTelEnabled bool

	RateLimit RateLimit
	CORS      CORS
}

// CORS configures cross-origin access for browser clients. An origin of "*"
// admits every origin.
type CORS struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

// RateLimit configures the per-client limiter.
type RateLimit struct {
	Enabled     bool
	Window      time.Duration
	MaxRequests int
	// Store is StoreRedis (shared across instances) or StoreMemory.
	Store           string
	CleanupInterval time.Duration
	TrustProxy      bool
	TrustedProxies  []string
}

// Default returns the configuration used when nothing is overridden.
// DatabaseURL has no default and must be provided.
func Default() *Config {
	return &Config{
		Port:            8080,
		RedisURL:        "redis://localhost:6379/0",
		LogLevel:        "info",
		CacheTTL:        120 * time.Second,
		CacheTimeout:    100 * time.Millisecond,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    1 << 20,
		RateLimit: RateLimit{
			Enabled:         true,
			Window:          ratelimit.DefaultWindow,
			MaxRequests:     ratelimit.DefaultLimit,
			Store:           StoreRedis,
			CleanupInterval: time.Minute,
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-API-Key", "X-Request-ID"},
			MaxAge:         10 * time.Minute,
		},
	}
}

// Load reads envFile (DefaultEnvFile when empty; a missing file is not an
// error), applies CONFIG_FILE and the environment over the defaults, and
// validates the result.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides fields with environment variables. The current field
// value is each variable's default, so file values survive unset variables.
func (c *Config) applyEnv() {
	c.Port = config.GetEnvInt("PORT", c.Port)
	c.DatabaseURL = config.GetEnvString("DATABASE_URL", c.DatabaseURL)
	c.RedisURL = config.GetEnvString("REDIS_URL", c.RedisURL)
	c.APIKey = config.GetEnvString("API_KEY", c.APIKey)
	c.APIPrefix = config.GetEnvString("API_PREFIX", c.APIPrefix)
	c.LogLevel = config.GetEnvString("LOG_LEVEL", c.LogLevel)

	c.CacheTTL = config.GetEnvSeconds("CACHE_TTL_SECONDS", c.CacheTTL)
	c.CacheTimeout = config.GetEnvDuration("CACHE_TIMEOUT", c.CacheTimeout)

	c.RequestTimeout = config.GetEnvDuration("HTTP_REQUEST_TIMEOUT", c.RequestTimeout)
	c.ShutdownTimeout = config.GetEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.MaxBodyBytes = config.GetEnvInt64("HTTP_MAX_BODY_BYTES", c.MaxBodyBytes)

	c.OTelEnabled = config.GetEnvBool("OTEL_ENABLED", c.OTelEnabled)

	rl := &c.RateLimit
	rl.Enabled = config.GetEnvBool("RATE_LIMIT_ENABLED", rl.Enabled)
	rl.Window = config.GetEnvSeconds("RATE_LIMIT_WINDOW_SECONDS", rl.Window)
	rl.MaxRequests = config.GetEnvInt("RATE_LIMIT_MAX_REQUESTS", rl.MaxRequests)
	rl.Store = config.GetEnvString("RATE_LIMIT_STORE", rl.Store)
	rl.CleanupInterval = config.GetEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", rl.CleanupInterval)
	rl.TrustProxy = config.GetEnvBool("RATE_LIMIT_TRUST_PROXY", rl.TrustProxy)
	rl.TrustedProxies = config.GetEnvStringList("RATE_LIMIT_TRUSTED_PROXIES", rl.TrustedProxies)

	cors := &c.CORS
	cors.AllowedOrigins = config.GetEnvStringList("CORS_ALLOWED_ORIGINS", cors.AllowedOrigins)
	cors.AllowedMethods = config.GetEnvStringList("CORS_ALLOWED_METHODS", cors.AllowedMethods)
	cors.AllowedHeaders = config.GetEnvStringList("CORS_ALLOWED_HEADERS", cors.AllowedHeaders)
	cors.MaxAge = config.GetEnvSeconds("CORS_MAX_AGE", cors.MaxAge)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be in 1..65535, got %d", c.Port))
	}
	errs = append(errs,
		config.CheckDuration("CACHE_TTL_SECONDS", c.CacheTTL, config.Positive),
		config.CheckDuration("CACHE_TIMEOUT", c.CacheTimeout, config.Between(time.Millisecond, 5*time.Second)),
		config.CheckDuration("HTTP_REQUEST_TIMEOUT", c.RequestTimeout, config.NonNegative),
		config.CheckDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout, config.Positive),
		config.CheckDuration("CORS_MAX_AGE", c.CORS.MaxAge, config.NonNegative),
	)
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("HTTP_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes))
	}

	if c.RateLimit.Enabled {
		if err := c.RateLimitConfig().Validate(); err != nil {
			errs = append(errs, err)
		}
		switch c.RateLimit.Store {
		case StoreRedis, StoreMemory:
		default:
			errs = append(errs, fmt.Errorf("RATE_LIMIT_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, c.RateLimit.Store))
		}
	}
	return errors.Join(errs...)
}

// RateLimitConfig converts the limiter settings for pkg/ratelimit.
func (c *Config) RateLimitConfig() ratelimit.RateLimitConfig {
	return ratelimit.RateLimitConfig{
		Enabled:   c.RateLimit.Enabled,
		Limit:     c.RateLimit.MaxRequests,
		Window:    c.RateLimit.Window,
		KeyPrefix: ratelimit.DefaultKeyPrefix,
	}
}

// Addr is the listen address for net/http.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
