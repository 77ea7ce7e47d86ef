package ssotoken

// Package ssotoken verifies inbound SSO identity tokens signed with the
// shared secret. It is the only component that parses the raw token;
// everything downstream works from the extracted Claim.

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/target/admin-sso-bridge/internal/domain/auth"
)

// claims is the wire shape of an inbound identity token. The issuing
// system may send a split first/last name, a single full name, or both.
type claims struct {
	Email     string `json:"email"`
	FirstName string `json:"firstname,omitempty"`
	LastName  string `json:"lastname,omitempty"`
	Name      string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 identity tokens against the SSO shared secret.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier constructs a Verifier. The secret must be non-empty; an
// empty verification secret is a deployment error caught at startup.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("sso token: shared secret is required")
	}
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Verify checks the token's signature and expiry and returns the trusted
// claim set. Any failure yields an InvalidTokenError with a reason safe
// to surface to the caller; no unverified path exists.
func (v *Verifier) Verify(raw string) (domainauth.Claim, error) {
	if raw == "" {
		return domainauth.Claim{}, &domainauth.InvalidTokenError{Reason: "token is empty"}
	}

	var c claims
	parsed, err := v.parser.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.secret, nil
	})
	if err != nil {
		return domainauth.Claim{}, &domainauth.InvalidTokenError{Reason: reasonFor(err), Cause: err}
	}
	if !parsed.Valid {
		return domainauth.Claim{}, &domainauth.InvalidTokenError{Reason: "token is not valid"}
	}

	var expiresAt time.Time
	if c.ExpiresAt != nil {
		expiresAt = c.ExpiresAt.Time
	}

	return domainauth.Claim{
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Name:      c.Name,
		ExpiresAt: expiresAt,
	}, nil
}

// reasonFor maps library errors to the human-readable reasons the
// original exchange exposed in its error body.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature is invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "token is not valid yet"
	default:
		return "verification failed"
	}
}
