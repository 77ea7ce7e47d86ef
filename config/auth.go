package config

import "time"

// SSOConfig contains configuration for inbound SSO token verification.
type SSOConfig struct {
	// SharedSecret verifies inbound identity tokens. SSO_JWT_SECRET is the
	// primary variable; SharedSecretFallback (SSO_SHARED_SECRET) is honored
	// for deployments configured before the rename.
	SharedSecret         string `env:"SSO_JWT_SECRET"`
	SharedSecretFallback string `env:"SSO_SHARED_SECRET"`
}

// Secret returns the effective SSO verification secret.
func (s SSOConfig) Secret() string {
	if s.SharedSecret != "" {
		return s.SharedSecret
	}
	return s.SharedSecretFallback
}

// SessionConfig contains configuration for issued admin sessions.
type SessionConfig struct {
	// Secret signs session tokens. It is distinct from the SSO shared
	// secret; when unset, AppSecret (APP_SECRET, the admin-panel-wide
	// secret) is used instead.
	Secret    string `env:"SESSION_SECRET"`
	AppSecret string `env:"APP_SECRET"`

	// TTL is the sliding session lifetime. The session cookie and the
	// session record's store TTL both follow it.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// AbsoluteTTL caps a session's total lifetime regardless of activity.
	AbsoluteTTL time.Duration `env:"SESSION_ABSOLUTE_TTL" envDefault:"12h"`

	// CookieName is protocol-significant: the admin panel reads it.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"jwtToken"`
}

// SigningSecret returns the effective session signing secret.
func (s SessionConfig) SigningSecret() string {
	if s.Secret != "" {
		return s.Secret
	}
	return s.AppSecret
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	SSO     SSOConfig
	Session SessionConfig

	// AdminRoleCode is the well-known code of the privileged role granted
	// to accounts provisioned through the SSO exchange.
	AdminRoleCode string `env:"ADMIN_ROLE_CODE" envDefault:"super-admin"`

	// AdminPath is the protected area the exchange redirects into.
	AdminPath string `env:"ADMIN_PATH" envDefault:"/admin"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Session.TTL <= 0 {
		a.Session.TTL = 30 * time.Minute
	}
	if a.Session.AbsoluteTTL < a.Session.TTL {
		a.Session.AbsoluteTTL = a.Session.TTL
	}
	if a.Session.CookieName == "" {
		a.Session.CookieName = "jwtToken"
	}
	if a.AdminRoleCode == "" {
		a.AdminRoleCode = "super-admin"
	}
	if a.AdminPath == "" {
		a.AdminPath = "/admin"
	}
}
