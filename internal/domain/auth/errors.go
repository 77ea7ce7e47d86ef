package auth

import "errors"

// Exchange error kinds. Every stage of the SSO exchange fails closed into
// exactly one of these; the HTTP layer maps them to status and body.
var (
	// ErrMissingToken is returned when the token query parameter is absent.
	ErrMissingToken = errors.New("missing token")

	// ErrMissingEmail is returned when a verified claim carries no email.
	ErrMissingEmail = errors.New("email not found in token")

	// ErrInvalidEmail is returned when the claim email is syntactically invalid.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInactiveAccount is returned when the resolved account is deactivated.
	ErrInactiveAccount = errors.New("user account is not active")

	// ErrRoleNotConfigured is returned when the privileged role cannot be
	// resolved. This is a deployment misconfiguration, not retryable.
	ErrRoleNotConfigured = errors.New("admin role not configured")
)

// InvalidTokenError reports a token that failed verification: missing
// signature, bad signature, expired, or malformed. The reason is safe to
// show to the caller.
type InvalidTokenError struct {
	Reason string
	Cause  error
}

func (e *InvalidTokenError) Error() string { return "invalid token: " + e.Reason }

func (e *InvalidTokenError) Unwrap() error { return e.Cause }

// SessionPersistenceError reports a failed session record write. The
// exchange never sets a cookie for a session that was not durably
// recorded, so the whole exchange is safe to retry.
type SessionPersistenceError struct {
	Cause error
}

func (e *SessionPersistenceError) Error() string {
	return "session persistence failed: " + e.Cause.Error()
}

func (e *SessionPersistenceError) Unwrap() error { return e.Cause }
