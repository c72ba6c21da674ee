package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML layout of CONFIG_FILE. Secrets (API_KEY) are not
// accepted from the file. Absent keys leave the defaults untouched.
//
//	port: 8080
//	database_url: postgres://app@db/articles
//	cache_ttl_seconds: 120
//	cache_timeout: 100ms
//	rate_limit:
//	  enabled: true
//	  window_seconds: 60
//	  max_requests: 20
//	  store: redis
//	cors:
//	  allowed_origins: [https://app.example.com]
type fileConfig struct {
	Port            int           `yaml:"port"`
	DatabaseURL     string        `yaml:"database_url"`
	RedisURL        string        `yaml:"redis_url"`
	APIPrefix       string        `yaml:"api_prefix"`
	LogLevel        string        `yaml:"log_level"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTimeout    time.Duration `yaml:"cache_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	OTelEnabled     *bool         `yaml:"otel_enabled"`

	RateLimit struct {
		Enabled         *bool         `yaml:"enabled"`
		WindowSeconds   int           `yaml:"window_seconds"`
		MaxRequests     int           `yaml:"max_requests"`
		Store           string        `yaml:"store"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
		TrustProxy      *bool         `yaml:"trust_proxy"`
		TrustedProxies  []string      `yaml:"trusted_proxies"`
	} `yaml:"rate_limit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
		AllowedMethods []string `yaml:"allowed_methods"`
		AllowedHeaders []string `yaml:"allowed_headers"`
		MaxAgeSeconds  int      `yaml:"max_age_seconds"`
	} `yaml:"cors"`
}

// applyFile overlays the YAML file at path onto c.
// The path comes from the operator's environment, not from request input.
func (c *Config) applyFile(path string) error {
	// #nosec G304 -- path is operator supplied
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIf(&c.Port, f.Port)
	setIf(&c.DatabaseURL, f.DatabaseURL)
	setIf(&c.RedisURL, f.RedisURL)
	setIf(&c.APIPrefix, f.APIPrefix)
	setIf(&c.LogLevel, f.LogLevel)
	setIf(&c.CacheTTL, time.Duration(f.CacheTTLSeconds)*time.Second)
	setIf(&c.CacheTimeout, f.CacheTimeout)
	setIf(&c.RequestTimeout, f.RequestTimeout)
	setIf(&c.ShutdownTimeout, f.ShutdownTimeout)
	setIf(&c.MaxBodyBytes, f.MaxBodyBytes)
	if f.OTelEnabled != nil {
		c.OTelEnabled = *f.OTelEnabled
	}

	rl := &c.RateLimit
	if f.RateLimit.Enabled != nil {
		rl.Enabled = *f.RateLimit.Enabled
	}
	setIf(&rl.Window, time.Duration(f.RateLimit.WindowSeconds)*time.Second)
	setIf(&rl.MaxRequests, f.RateLimit.MaxRequests)
	setIf(&rl.Store, f.RateLimit.Store)
	setIf(&rl.CleanupInterval, f.RateLimit.CleanupInterval)
	if f.RateLimit.TrustProxy != nil {
		rl.TrustProxy = *f.RateLimit.TrustProxy
	}
	setList(&rl.TrustedProxies, f.RateLimit.TrustedProxies)

	cors := &c.CORS
	setList(&cors.AllowedOrigins, f.CORS.AllowedOrigins)
	setList(&cors.AllowedMethods, f.CORS.AllowedMethods)
	setList(&cors.AllowedHeaders, f.CORS.AllowedHeaders)
	setIf(&cors.MaxAge, time.Duration(f.CORS.MaxAgeSeconds)*time.Second)
	return nil
}

func setList(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = v
	}
}

func setIf[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
