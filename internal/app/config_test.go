package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.LoginCooldown)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.UsingDefaultJWTSecret())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRefusesDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.UsingDefaultJWTSecret())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("LOGIN_COOLDOWN", "10s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.LoginCooldown)
	assert.Equal(t, "json", cfg.LogFormat)
}
