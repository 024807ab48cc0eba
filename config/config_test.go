package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	err := LoadConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "manifold", cfg.App.Name)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.KeyValue.Driver)
	assert.Equal(t, "MANIFOLD", cfg.Secret.KeyPrefix)
	assert.Equal(t, 30*time.Minute, cfg.Secret.TokenExpiration)
	assert.Equal(t, time.Hour, cfg.Secret.PasswordChangeExpiration)
	assert.Equal(t, uint32(32768), cfg.Auth.ArgonMemory)
	assert.Equal(t, uint32(40), cfg.Auth.ArgonIterations)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MANIFOLD_SERVER_PORT", "9090")
	t.Setenv("MANIFOLD_SECRET_TOKEN_EXPIRATION", "15m")
	t.Setenv("MANIFOLD_AUTH_PEPPER", "test-pepper")
	t.Setenv("MANIFOLD_SESSION_MAX_AGE", "1h")

	cfg := &Config{}
	err := LoadConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Secret.TokenExpiration)
	assert.Equal(t, "test-pepper", cfg.Auth.Pepper)
	assert.Equal(t, time.Hour, cfg.Session.MaxAge)
}

func TestLoadConfig_NoPepperDefault(t *testing.T) {
	cfg := &Config{}
	err := LoadConfig(cfg)
	require.NoError(t, err)

	assert.Empty(t, cfg.Auth.Pepper)
	assert.Empty(t, cfg.Secret.SecretKey)
}
