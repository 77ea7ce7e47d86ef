package sessiontoken

// Package sessiontoken mints the signed session tokens the admin panel
// authenticates with. The signing secret is distinct from the SSO shared
// secret and is never reused for inbound verification.

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the fixed discriminator embedded in every session token,
// so the admin panel can reject tokens minted for other purposes.
const TokenType = "admin-session"

// Claims is the session token payload: account, session, and validity.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// Signer mints HS256 session tokens with a fixed lifetime.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a Signer. An empty signing secret is a fatal
// configuration error surfaced here rather than per request.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("session token: signing secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session token: ttl must be positive")
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// NewSignerAt is like NewSigner with an injectable clock for tests.
func NewSignerAt(secret string, ttl time.Duration, now func() time.Time) (*Signer, error) {
	s, err := NewSigner(secret, ttl)
	if err != nil {
		return nil, err
	}
	s.now = now
	return s, nil
}

// Sign mints a token bound to the given user and session.
func (s *Signer) Sign(userID, sessionID string) (string, time.Time, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    userID,
		SessionID: sessionID,
		Type:      TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	return signed, issuedAt, expiresAt, nil
}

// Parse validates a session token and returns its claims. It exists for
// the admin panel's request-authentication middleware and for tests;
// the exchange itself only signs.
func (s *Signer) Parse(raw string) (*Claims, error) {
	var c Claims
	parsed, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || c.Type != TokenType {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &c, nil
}
