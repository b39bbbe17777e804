// Package config provides small helpers for environment-driven configuration.
package config

import (
	"os"
	"strconv"
	"time"
)

// Get returns the value of an environment variable or a fallback.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt parses an integer environment variable, returning the fallback on
// absence or parse failure.
func GetInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// GetBool parses a boolean environment variable, returning the fallback on
// absence or parse failure.
func GetBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// GetDuration parses a duration environment variable, returning the fallback
// on absence or parse failure.
func GetDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
