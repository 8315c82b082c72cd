// Package config reads typed values from environment variables.
// Invalid values fall back to the default and are logged as warnings.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of key, or defaultValue when it is unset or empty.
//
// Example:
//
//	version := GetEnvString("APP_VERSION", "1.0.0")
func GetEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt parses key as a base-10 integer. Surrounding spaces are ignored.
//
// Example:
//
//	port := GetEnvInt("PORT", 3000)
func GetEnvInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, "integer", strconv.Atoi)
}

// GetEnvBool parses key with strconv.ParseBool ("1", "true", "false", ...).
//
// Example:
//
//	enabled := GetEnvBool("TRACING_ENABLED", false)
func GetEnvBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, "boolean", strconv.ParseBool)
}

// GetEnvFlag reports whether key is set to exactly "1". Any other value,
// including "true", leaves the flag off.
func GetEnvFlag(key string) bool {
	return os.Getenv(key) == "1"
}

// GetEnvDuration parses key with time.ParseDuration ("5s", "1m30s").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, "duration", time.ParseDuration)
}

func parseEnv[T any](key string, defaultValue T, kind string, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	value, err := parse(raw)
	if err != nil {
		slog.Warn(fmt.Sprintf("invalid %s value for environment variable, using default", kind),
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", defaultValue),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return value
}
