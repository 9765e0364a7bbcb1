package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetenvOrDefault returns the value of the environment variable named by key,
// or defaultValue when the variable is unset or blank.
func GetenvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}

	return defaultValue
}

// GetenvIntOrDefault returns the integer value of the environment variable
// named by key, or defaultValue when the variable is unset, blank, or not a
// valid integer.
func GetenvIntOrDefault(key string, defaultValue int) int {
	raw := GetenvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// GetenvBoolOrDefault returns the boolean value of the environment variable
// named by key, or defaultValue when the variable is unset, blank, or not
// parseable by strconv.ParseBool.
func GetenvBoolOrDefault(key string, defaultValue bool) bool {
	raw := GetenvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// GetenvFloatOrDefault returns the float value of the environment variable
// named by key, or defaultValue when the variable is unset, blank, or not a
// valid float.
func GetenvFloatOrDefault(key string, defaultValue float64) float64 {
	raw := GetenvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// GetenvDurationOrDefault returns the duration value of the environment
// variable named by key, or defaultValue when the variable is unset, blank,
// or not parseable by time.ParseDuration. Bare integers are read as
// milliseconds.
func GetenvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := GetenvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}

	if millis, err := strconv.Atoi(raw); err == nil {
		return time.Duration(millis) * time.Millisecond
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}

	return parsed
}
