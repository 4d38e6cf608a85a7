package config_test

import (
	"testing"
	"time"

	"github.com/ashford-college/admissions-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "a-perfectly-reasonable-test-secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenLifetime)
	assert.Equal(t, 5, cfg.Auth.MaxSessionsPerUser)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginAttemptWindow)
	assert.Equal(t, 60*time.Second, cfg.Auth.SweepInterval)
	assert.Equal(t, 30*time.Minute, cfg.Auth.IdleTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Auth.IdleWarningLead)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Email.Enabled)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_WeakJWTSecretRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOKEN_LIFETIME", "12h")
	t.Setenv("MAX_SESSIONS_PER_USER", "3")
	t.Setenv("LOGIN_ATTEMPT_WINDOW", "5m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenLifetime)
	assert.Equal(t, 3, cfg.Auth.MaxSessionsPerUser)
	assert.Equal(t, 5*time.Minute, cfg.Auth.LoginAttemptWindow)
}

func TestLoad_TOTPKeyLengthValidated(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TOTP_ENCRYPTION_KEY", "too-short")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_WarningLeadMustBeShorterThanTimeout(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("IDLE_TIMEOUT", "1m")
	t.Setenv("IDLE_WARNING_LEAD", "2m")

	_, err := config.Load()
	assert.Error(t, err)
}
