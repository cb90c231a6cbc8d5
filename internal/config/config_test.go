package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_ACCESS_SECRET", "")
	t.Setenv("AUTH_REFRESH_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL())
	require.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL())
	require.Equal(t, "guest_id", cfg.Guest.CookieName)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "5")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_HOURS", "2")
	t.Setenv("GUEST_COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.App.Port)
	require.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL())
	require.Equal(t, 2*time.Hour, cfg.Auth.RefreshTTL())
	require.True(t, cfg.Guest.CookieSecure)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
}

func TestAuthConfig_Validate(t *testing.T) {
	base := AuthConfig{
		AccessSecret:          "a",
		RefreshSecret:         "r",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLHours:  1,
	}
	require.NoError(t, base.Validate())

	sameSecret := base
	sameSecret.RefreshSecret = "a"
	require.Error(t, sameSecret.Validate())

	tooLong := base
	tooLong.AccessTokenTTLMinutes = 60
	require.Error(t, tooLong.Validate(), "access TTL equal to refresh TTL must be rejected")

	zero := base
	zero.RefreshTokenTTLHours = 0
	require.Error(t, zero.Validate())
}
