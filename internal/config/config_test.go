package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "http://localhost:8080", cfg.ShortURLBase)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "tinylink_session", cfg.SessionCookieName)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("BASE_URL", "http://envonly.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_COOKIE_NAME", "session_from_env")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "http://envonly.com", cfg.ShortURLBase)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "session_from_env", cfg.SessionCookieName)
}

func TestConfigRejectsBadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err, "An unknown log level should not validate")
}

func TestConfigRejectsBadRunAddr(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "not a host port")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err, "A malformed listen address should not validate")
}
