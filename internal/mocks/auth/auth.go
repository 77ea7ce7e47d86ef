package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/target/admin-sso-bridge/internal/data"
	domainauth "github.com/target/admin-sso-bridge/internal/domain/auth"
	"github.com/target/admin-sso-bridge/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.TokenVerifier = (*MockTokenVerifier)(nil)
	_ ports.UserDirectory = (*MemoryUserDirectory)(nil)
	_ ports.RoleDirectory = (*StaticRoleDirectory)(nil)
	_ ports.SessionSigner = (*MockSessionSigner)(nil)
	_ ports.SessionStore  = (*MemorySessionStore)(nil)
	_ ports.Fingerprinter = (*StaticFingerprinter)(nil)
)

// ErrNotFound is returned by MemorySessionStore when a session is not present.
// The user and role directories return the data-layer sentinels instead so
// callers see the same errors as with the real repositories.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// MockTokenVerifier returns a canned claim or a canned error. VerifyFunc
// wins when set.
type MockTokenVerifier struct {
	VerifyFunc func(raw string) (domainauth.Claim, error)

	Claim domainauth.Claim
	Err   error
}

// NewMockTokenVerifier creates a verifier that accepts any token as a
// default test identity.
func NewMockTokenVerifier() *MockTokenVerifier {
	return &MockTokenVerifier{
		Claim: domainauth.Claim{
			Email:     "mock.user@example.com",
			FirstName: "Mock",
			LastName:  "User",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockTokenVerifier) Verify(raw string) (domainauth.Claim, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(raw)
	}
	if m.Err != nil {
		return domainauth.Claim{}, m.Err
	}
	return m.Claim, nil
}

// MemoryUserDirectory is an in-memory account directory for unit tests.
// Per-method error hooks allow failure injection.
type MemoryUserDirectory struct {
	users  map[string]domainauth.AdminUser // keyed by ID
	nextID int

	// CreateFunc wins when set, useful for simulating races where a
	// concurrent insert beats this one.
	CreateFunc func(user domainauth.AdminUser, role domainauth.Role) (*domainauth.AdminUser, error)

	FindByEmailErr    error
	FindByUsernameErr error
	CreateErr         error
	UpdateNamesErr    error
	RepairErr         error
	TouchErr          error

	// Calls records method invocations in order, for asserting which
	// resolution path ran.
	Calls []string
}

// NewMemoryUserDirectory creates an empty in-memory directory.
func NewMemoryUserDirectory() *MemoryUserDirectory {
	return &MemoryUserDirectory{users: make(map[string]domainauth.AdminUser)}
}

// Seed inserts a user directly, bypassing provisioning rules.
func (m *MemoryUserDirectory) Seed(user domainauth.AdminUser) domainauth.AdminUser {
	if user.ID == "" {
		m.nextID++
		user.ID = fmt.Sprintf("user-%d", m.nextID)
	}
	m.users[user.ID] = user
	return user
}

// Get returns the stored user by ID for assertions.
func (m *MemoryUserDirectory) Get(id string) (domainauth.AdminUser, bool) {
	u, ok := m.users[id]
	return u, ok
}

// Len returns the number of stored accounts.
func (m *MemoryUserDirectory) Len() int { return len(m.users) }

func (m *MemoryUserDirectory) FindByEmail(_ context.Context, email string) (*domainauth.AdminUser, error) {
	m.Calls = append(m.Calls, "FindByEmail")
	if m.FindByEmailErr != nil {
		return nil, m.FindByEmailErr
	}
	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, data.ErrUserNotFound
}

func (m *MemoryUserDirectory) FindByUsername(_ context.Context, username string) (*domainauth.AdminUser, error) {
	m.Calls = append(m.Calls, "FindByUsername")
	if m.FindByUsernameErr != nil {
		return nil, m.FindByUsernameErr
	}
	for _, u := range m.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, data.ErrUserNotFound
}

func (m *MemoryUserDirectory) Create(_ context.Context, user domainauth.AdminUser, role domainauth.Role) (*domainauth.AdminUser, error) {
	m.Calls = append(m.Calls, "Create")
	if m.CreateFunc != nil {
		return m.CreateFunc(user, role)
	}
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if user.ID == "" {
		m.nextID++
		user.ID = fmt.Sprintf("user-%d", m.nextID)
	}
	now := time.Now()
	user.Roles = []domainauth.Role{role}
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	created := user
	return &created, nil
}

func (m *MemoryUserDirectory) UpdateNames(_ context.Context, id, firstName, lastName string) (*domainauth.AdminUser, error) {
	m.Calls = append(m.Calls, "UpdateNames")
	if m.UpdateNamesErr != nil {
		return nil, m.UpdateNamesErr
	}
	user, ok := m.users[id]
	if !ok {
		return nil, data.ErrUserNotFound
	}
	now := time.Now()
	user.FirstName = firstName
	user.LastName = lastName
	user.LastLoginAt = &now
	user.UpdatedAt = now
	m.users[id] = user
	updated := user
	return &updated, nil
}

func (m *MemoryUserDirectory) RepairLegacyEmail(_ context.Context, id, email string) (*domainauth.AdminUser, error) {
	m.Calls = append(m.Calls, "RepairLegacyEmail")
	if m.RepairErr != nil {
		return nil, m.RepairErr
	}
	user, ok := m.users[id]
	if !ok {
		return nil, data.ErrUserNotFound
	}
	now := time.Now()
	user.Email = email
	user.IsActive = true
	user.LastLoginAt = &now
	user.UpdatedAt = now
	m.users[id] = user
	repaired := user
	return &repaired, nil
}

func (m *MemoryUserDirectory) TouchLastLogin(_ context.Context, id string) error {
	m.Calls = append(m.Calls, "TouchLastLogin")
	if m.TouchErr != nil {
		return m.TouchErr
	}
	user, ok := m.users[id]
	if !ok {
		return data.ErrUserNotFound
	}
	now := time.Now()
	user.LastLoginAt = &now
	m.users[id] = user
	return nil
}

// StaticRoleDirectory resolves every code to a fixed role, or fails with
// a fixed error.
type StaticRoleDirectory struct {
	Role *domainauth.Role
	Err  error

	Calls []string
}

func (s *StaticRoleDirectory) FindByCode(_ context.Context, code string) (*domainauth.Role, error) {
	s.Calls = append(s.Calls, code)
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Role == nil {
		return nil, data.ErrRoleNotFound
	}
	role := *s.Role
	return &role, nil
}

// MockSessionSigner mints deterministic tokens of the form
// "signed:<userID>:<sessionID>". SignFunc wins when set.
type MockSessionSigner struct {
	SignFunc func(userID, sessionID string) (string, time.Time, time.Time, error)

	TTL time.Duration
	Now time.Time
	Err error
}

// NewMockSessionSigner creates a signer with a 30m TTL anchored at a
// fixed instant.
func NewMockSessionSigner() *MockSessionSigner {
	return &MockSessionSigner{
		TTL: 30 * time.Minute,
		Now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *MockSessionSigner) Sign(userID, sessionID string) (string, time.Time, time.Time, error) {
	if m.SignFunc != nil {
		return m.SignFunc(userID, sessionID)
	}
	if m.Err != nil {
		return "", time.Time{}, time.Time{}, m.Err
	}
	issuedAt := m.Now
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	ttl := m.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return "signed:" + userID + ":" + sessionID, issuedAt, issuedAt.Add(ttl), nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	sessions map[string]domainauth.Session

	SaveErr error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int { return len(m.sessions) }

// StaticFingerprinter hashes deterministically without parsing the user
// agent.
type StaticFingerprinter struct {
	Name string
}

func (s StaticFingerprinter) Fingerprint(info ports.DeviceInfo) (string, string) {
	sum := sha256.Sum256([]byte(info.UserAgent + "|" + info.ClientIP))
	name := s.Name
	if name == "" {
		name = "Test Device"
	}
	return hex.EncodeToString(sum[:]), name
}
