package ports

// Package ports defines interfaces (hexagonal ports) for the SSO exchange.
// Implementations live in internal/adapters and internal/data;
// orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/target/admin-sso-bridge/internal/domain/auth"
)

// TokenVerifier validates an inbound signed identity token against the SSO
// shared secret and returns the trusted claim set.
type TokenVerifier interface {
	Verify(raw string) (domainauth.Claim, error)
}

// UserDirectory is the account directory backing identity resolution and
// provisioning.
type UserDirectory interface {
	// FindByEmail returns the account whose email matches exactly, or a
	// not-found error.
	FindByEmail(ctx context.Context, email string) (*domainauth.AdminUser, error)

	// FindByUsername supports the legacy-repair path where a migrated
	// record's username holds an email value.
	FindByUsername(ctx context.Context, username string) (*domainauth.AdminUser, error)

	// Create inserts a new account with the given role attached.
	Create(ctx context.Context, user domainauth.AdminUser, role domainauth.Role) (*domainauth.AdminUser, error)

	// UpdateNames sets the display-name fields and stamps last login.
	UpdateNames(ctx context.Context, id, firstName, lastName string) (*domainauth.AdminUser, error)

	// RepairLegacyEmail sets the email on a legacy record matched by
	// username and marks it active.
	RepairLegacyEmail(ctx context.Context, id, email string) (*domainauth.AdminUser, error)

	// TouchLastLogin stamps the last-login timestamp.
	TouchLastLogin(ctx context.Context, id string) error
}

// RoleDirectory resolves administrative roles by their well-known code.
type RoleDirectory interface {
	FindByCode(ctx context.Context, code string) (*domainauth.Role, error)
}

// SessionSigner mints the signed session token bound to a resolved account.
type SessionSigner interface {
	// Sign returns the signed token for the given user/session pair along
	// with its issued-at and expiry instants.
	Sign(userID, sessionID string) (token string, issuedAt, expiresAt time.Time, err error)
}

// SessionStore persists and retrieves admin session records.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// DeviceInfo is the request metadata hashed into a session's device
// fingerprint.
type DeviceInfo struct {
	UserAgent string
	ClientIP  string
}

// Fingerprinter derives an audit fingerprint and display name from request
// metadata.
type Fingerprinter interface {
	Fingerprint(info DeviceInfo) (hash, displayName string)
}
