package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSSOConfig_SecretFallback(t *testing.T) {
	cfg := SSOConfig{SharedSecret: "primary", SharedSecretFallback: "fallback"}
	assert.Equal(t, "primary", cfg.Secret())

	cfg.SharedSecret = ""
	assert.Equal(t, "fallback", cfg.Secret())

	cfg.SharedSecretFallback = ""
	assert.Equal(t, "", cfg.Secret())
}

func TestSessionConfig_SigningSecretFallback(t *testing.T) {
	cfg := SessionConfig{Secret: "session-secret", AppSecret: "app-secret"}
	assert.Equal(t, "session-secret", cfg.SigningSecret())

	cfg.Secret = ""
	assert.Equal(t, "app-secret", cfg.SigningSecret())
}

func TestAuthConfig_Sanitize_Defaults(t *testing.T) {
	var cfg AuthConfig
	cfg.Sanitize()

	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, cfg.Session.TTL, cfg.Session.AbsoluteTTL)
	assert.Equal(t, "jwtToken", cfg.Session.CookieName)
	assert.Equal(t, "super-admin", cfg.AdminRoleCode)
	assert.Equal(t, "/admin", cfg.AdminPath)
}

func TestAuthConfig_Sanitize_AbsoluteTTLNotBelowSliding(t *testing.T) {
	cfg := AuthConfig{
		Session: SessionConfig{
			TTL:         time.Hour,
			AbsoluteTTL: 10 * time.Minute,
			CookieName:  "jwtToken",
		},
		AdminRoleCode: "super-admin",
		AdminPath:     "/admin",
	}
	cfg.Sanitize()

	assert.Equal(t, time.Hour, cfg.Session.AbsoluteTTL)
}

func TestAppConfig_Sanitize_DevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}

func TestAppConfig_Sanitize_DevFlagWins(t *testing.T) {
	t.Setenv("NODE_ENV", "production")

	cfg := AppConfig{IsDev: true}
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	var cfg HTTPConfig
	cfg.Sanitize()

	assert.Equal(t, ":8080", cfg.Addr)
}
