// Package config reads typed values from environment variables.
//
// A variable that is unset or empty yields the default silently. A variable
// that is set but cannot be parsed also yields the default, with a warning
// logged through slog so a typo never stops the process from starting.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of key, or defaultValue when unset or empty.
func GetEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt returns key parsed as a base-10 integer.
//
//	port := GetEnvInt("PORT", 8080)
func GetEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		warnInvalid(key, valueStr, strconv.Itoa(defaultValue), err)
		return defaultValue
	}
	return value
}

// GetEnvInt64 is GetEnvInt for 64-bit values such as byte sizes.
func GetEnvInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(strings.TrimSpace(valueStr), 10, 64)
	if err != nil {
		warnInvalid(key, valueStr, strconv.FormatInt(defaultValue, 10), err)
		return defaultValue
	}
	return value
}

// GetEnvBool returns key parsed with strconv.ParseBool
// (1, t, true, 0, f, false in any of their usual cases).
func GetEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		warnInvalid(key, valueStr, strconv.FormatBool(defaultValue), err)
		return defaultValue
	}
	return value
}

// GetEnvDuration returns key parsed with time.ParseDuration ("100ms", "2m").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		warnInvalid(key, valueStr, defaultValue.String(), err)
		return defaultValue
	}
	return value
}

// GetEnvSeconds reads a whole number of seconds, for variables such as
// CACHE_TTL_SECONDS that are documented in seconds rather than durations.
func GetEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	n := GetEnvInt(key, int(defaultValue/time.Second))
	return time.Duration(n) * time.Second
}

// GetEnvStringList splits key on commas, trimming blanks and dropping
// empty items. An all-empty list yields defaultValue.
func GetEnvStringList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

func warnInvalid(key, value, defaultValue string, err error) {
	slog.Warn("invalid value for environment variable, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.String("default", defaultValue),
		slog.String("error", err.Error()))
}
