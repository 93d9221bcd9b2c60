package config_test

import (
	"encoding/json"
	"testing"

	"github.com/hzbay/amqp-acker/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintServiceEnv(t *testing.T) {
	config := config.DefaultServiceConfigFromEnv()
	b, err := json.MarshalIndent(config, "", "  ")
	require.NoError(t, err)

	// credentials must never be printed
	assert.NotContains(t, string(b), "password")
}

func TestLoggerLevelFromEnv(t *testing.T) {
	t.Setenv("SERVER_LOGGER_LEVEL", "warn")
	t.Setenv("SERVER_LOGGER_REQUEST_LEVEL", "nonsense")

	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, zerolog.WarnLevel, cfg.Logger.Level)
	assert.Equal(t, zerolog.DebugLevel, cfg.Logger.RequestLevel)
}
