package auth

// Package auth contains domain-level types for the SSO exchange and admin
// sessions. It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Claim is the set of identity assertions extracted from a verified SSO
// token. Instances are produced only by the token verifier; downstream
// components never re-parse the raw token.
type Claim struct {
	Email     string
	FirstName string
	LastName  string
	Name      string // full display name, used when the split fields are absent
	ExpiresAt time.Time
}

// DeriveNames resolves the display name for the claim. FirstName/LastName
// win when present, then the full Name split on its first space, then the
// local part of the email address.
func (c Claim) DeriveNames() (first, last string) {
	first = c.FirstName
	last = c.LastName
	if first == "" && c.Name != "" {
		parts := strings.Fields(c.Name)
		if len(parts) > 0 {
			first = parts[0]
		}
		if last == "" && len(parts) > 1 {
			last = strings.Join(parts[1:], " ")
		}
	}
	if first == "" {
		if at := strings.IndexByte(c.Email, '@'); at > 0 {
			first = c.Email[:at]
		}
	}
	return first, last
}

// Role is a reference to an administrative role resolved by its
// well-known code.
type Role struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// AdminUser is the administrative identity the exchange resolves or
// provisions. Email is the sole authoritative lookup key; Username may
// hold an email value from legacy data and is never the primary match.
type AdminUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsActive    bool       `json:"is_active"`
	Roles       []Role     `json:"roles"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SessionStatus describes the lifecycle state of a session record.
type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusRevoked SessionStatus = "revoked"
)

// Session is the server-side record persisted for an authenticated admin.
// ID is an opaque random identifier; SignedToken embeds ID and UserID and
// is signed with the session-signing secret, never the SSO shared secret.
type Session struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	SignedToken       string        `json:"signed_token"`
	IssuedAt          time.Time     `json:"issued_at"`
	ExpiresAt         time.Time     `json:"expires_at"`
	AbsoluteExpiresAt time.Time     `json:"absolute_expires_at"`
	DeviceFingerprint string        `json:"device_fingerprint"`
	DeviceName        string        `json:"device_name"`
	Status            SessionStatus `json:"status"`
}

// IsActive reports whether the session is usable at the given instant.
func (s Session) IsActive(now time.Time) bool {
	return s.Status == SessionStatusActive &&
		now.Before(s.ExpiresAt) &&
		now.Before(s.AbsoluteExpiresAt)
}
