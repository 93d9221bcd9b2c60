package util

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// GetEnv returns the value of the environment variable key or defaultVal if unset.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}

// GetEnvAsInt parses key as an int, falling back to defaultVal when unset or malformed.
func GetEnvAsInt(key string, defaultVal int) int {
	strVal := GetEnv(key, "")
	if strVal == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(strVal)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("value", strVal).Msg("Invalid int in environment, using default")
		return defaultVal
	}

	return val
}

// GetEnvAsBool parses key as a bool, falling back to defaultVal when unset or malformed.
func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := strings.TrimSpace(GetEnv(key, ""))
	if strVal == "" {
		return defaultVal
	}

	val, err := strconv.ParseBool(strVal)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("value", strVal).Msg("Invalid bool in environment, using default")
		return defaultVal
	}

	return val
}

// GetEnvAsDuration parses key with time.ParseDuration.
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	strVal := GetEnv(key, "")
	if strVal == "" {
		return defaultVal
	}

	val, err := time.ParseDuration(strVal)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("value", strVal).Msg("Invalid duration in environment, using default")
		return defaultVal
	}

	return val
}
