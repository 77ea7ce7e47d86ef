package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/admin-sso-bridge/internal/domain/auth"
	apperrors "github.com/target/admin-sso-bridge/internal/errors"
	mocks "github.com/target/admin-sso-bridge/internal/mocks/auth"
	"github.com/target/admin-sso-bridge/internal/ports"
)

type ssoFixture struct {
	verifier *mocks.MockTokenVerifier
	users    *mocks.MemoryUserDirectory
	roles    *mocks.StaticRoleDirectory
	signer   *mocks.MockSessionSigner
	sessions *mocks.MemorySessionStore
	service  *SSOService
}

func newSSOFixture() *ssoFixture {
	verifier := mocks.NewMockTokenVerifier()
	users := mocks.NewMemoryUserDirectory()
	roles := &mocks.StaticRoleDirectory{
		Role: &domainauth.Role{ID: "role-1", Code: "super-admin", Name: "Super Admin"},
	}
	signer := mocks.NewMockSessionSigner()
	sessions := mocks.NewMemorySessionStore()

	svc := NewSSOService(SSOServiceOptions{
		Verifier:    verifier,
		Users:       users,
		Roles:       roles,
		Signer:      signer,
		Sessions:    sessions,
		Devices:     mocks.StaticFingerprinter{},
		RoleCode:    "super-admin",
		AbsoluteTTL: 12 * time.Hour,
	})

	return &ssoFixture{
		verifier: verifier,
		users:    users,
		roles:    roles,
		signer:   signer,
		sessions: sessions,
		service:  svc,
	}
}

func testDevice() ports.DeviceInfo {
	return ports.DeviceInfo{UserAgent: "test-agent", ClientIP: "10.0.0.1"}
}

func TestSSOService_Exchange_MissingToken(t *testing.T) {
	f := newSSOFixture()

	result, err := f.service.Exchange(context.Background(), ExchangeInput{RawToken: ""})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domainauth.ErrMissingToken)
	assert.Empty(t, f.users.Calls)
}

func TestSSOService_Exchange_InvalidTokenPassthrough(t *testing.T) {
	f := newSSOFixture()
	f.verifier.Err = &domainauth.InvalidTokenError{Reason: "signature is invalid"}

	result, err := f.service.Exchange(context.Background(), ExchangeInput{RawToken: "bad"})

	assert.Nil(t, result)
	var invalid *domainauth.InvalidTokenError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "signature is invalid", invalid.Reason)
	assert.Empty(t, f.users.Calls)
}

func TestSSOService_Exchange_MissingEmail(t *testing.T) {
	f := newSSOFixture()
	f.verifier.Claim = domainauth.Claim{Name: "No Email"}

	result, err := f.service.Exchange(context.Background(), ExchangeInput{RawToken: "token"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domainauth.ErrMissingEmail)
}

func TestSSOService_Exchange_InvalidEmail(t *testing.T) {
	f := newSSOFixture()
	f.verifier.Claim = domainauth.Claim{Email: "not-an-email"}

	result, err := f.service.Exchange(context.Background(), ExchangeInput{RawToken: "token"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domainauth.ErrInvalidEmail)
	assert.Empty(t, f.users.Calls)
}

func TestSSOService_Exchange_ExistingAccount_SameNames(t *testing.T) {
	f := newSSOFixture()
	seeded := f.users.Seed(domainauth.AdminUser{
		Email:     "mock.user@example.com",
		Username:  "mock.user@example.com",
		FirstName: "Mock",
		LastName:  "User",
		IsActive:  true,
	})

	result, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})

	require.NoError(t, err)
	assert.Equal(t, seeded.ID, result.User.ID)
	assert.False(t, result.Provisioned)
	assert.Equal(t, 1, f.users.Len())
	assert.Contains(t, f.users.Calls, "TouchLastLogin")
	assert.NotContains(t, f.users.Calls, "Create")
	assert.NotContains(t, f.users.Calls, "UpdateNames")

	stored, ok := f.users.Get(seeded.ID)
	require.True(t, ok)
	require.NotNil(t, stored.LastLoginAt)
}

func TestSSOService_Exchange_ExistingAccount_NamesUpdated(t *testing.T) {
	f := newSSOFixture()
	seeded := f.users.Seed(domainauth.AdminUser{
		Email:     "mock.user@example.com",
		Username:  "mock.user@example.com",
		FirstName: "Old",
		LastName:  "Name",
		IsActive:  true,
	})

	result, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})

	require.NoError(t, err)
	assert.Equal(t, seeded.ID, result.User.ID)
	assert.Equal(t, "Mock", result.User.FirstName)
	assert.Equal(t, "User", result.User.LastName)
	assert.Contains(t, f.users.Calls, "UpdateNames")
	assert.NotContains(t, f.users.Calls, "TouchLastLogin")
	assert.Equal(t, 1, f.users.Len())
}

func TestSSOService_Exchange_LegacyRepair(t *testing.T) {
	f := newSSOFixture()
	seeded := f.users.Seed(domainauth.AdminUser{
		Email:    "",
		Username: "mock.user@example.com",
		IsActive: false,
	})

	result, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})

	require.NoError(t, err)
	assert.Equal(t, seeded.ID, result.User.ID)
	assert.False(t, result.Provisioned)
	assert.Equal(t, "mock.user@example.com", result.User.Email)
	assert.True(t, result.User.IsActive)
	assert.Contains(t, f.users.Calls, "RepairLegacyEmail")
	assert.NotContains(t, f.users.Calls, "Create")
	assert.Equal(t, 1, f.users.Len())
}

func TestSSOService_Exchange_ProvisionsNewAccount(t *testing.T) {
	f := newSSOFixture()
	f.verifier.Claim = domainauth.Claim{
		Email: "jane.doe@example.com",
		Name:  "Jane Q Doe",
	}

	result, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})

	require.NoError(t, err)
	assert.True(t, result.Provisioned)
	assert.Equal(t, "jane.doe@example.com", result.User.Email)
	assert.Equal(t, "jane.doe@example.com", result.User.Username)
	assert.Equal(t, "Jane", result.User.FirstName)
	assert.Equal(t, "Q Doe", result.User.LastName)
	assert.True(t, result.User.IsActive)
	require.Len(t, result.User.Roles, 1)
	assert.Equal(t, "super-admin", result.User.Roles[0].Code)
	assert.Equal(t, []string{"super-admin"}, f.roles.Calls)
	assert.Equal(t, 1, f.users.Len())
	assert.Nil(t, result.User.LastLoginAt)
}

func TestSSOService_Exchange_ProvisionDerivesNamesFromEmail(t *testing.T) {
	f := newSSOFixture()
	f.verifier.Claim = domainauth.Claim{Email: "solo@example.com"}

	result, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})

	require.NoError(t, err)
	assert.Equal(t, "solo", result.User.FirstName)
	assert.Equal(t, "", result.User.LastName)
}

func TestSSOService_Exchange_RoleNotConfigured(t *testing.T) {
	f := newSSOFixture()
	f.roles.Role = nil
	f.verifier.Claim = domainauth.Claim{Email: "new.user@example.com"}

	result, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domainauth.ErrRoleNotConfigured)
	assert.Equal(t, 0, f.users.Len())
	assert.NotContains(t, f.users.Calls, "Create")
	assert.Equal(t, 0, f.sessions.Len())
}

func TestSSOService_Exchange_InactiveAccount(t *testing.T) {
	f := newSSOFixture()
	f.users.Seed(domainauth.AdminUser{
		Email:     "mock.user@example.com",
		Username:  "mock.user@example.com",
		FirstName: "Mock",
		LastName:  "User",
		IsActive:  false,
	})

	result, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domainauth.ErrInactiveAccount)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestSSOService_Exchange_ProvisionRace_ReadsWinner(t *testing.T) {
	f := newSSOFixture()
	f.verifier.Claim = domainauth.Claim{Email: "racer@example.com", Name: "Racer One"}

	f.users.CreateFunc = func(user domainauth.AdminUser, role domainauth.Role) (*domainauth.AdminUser, error) {
		// Simulate a concurrent exchange winning the insert first.
		f.users.Seed(domainauth.AdminUser{
			ID:       "winner-1",
			Email:    "racer@example.com",
			Username: "racer@example.com",
			IsActive: true,
		})
		return nil, apperrors.Conflict("email")
	}

	result, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})

	require.NoError(t, err)
	assert.Equal(t, "winner-1", result.User.ID)
	assert.Equal(t, 1, f.users.Len())
}

func TestSSOService_Exchange_SessionPersistenceFailure(t *testing.T) {
	f := newSSOFixture()
	f.users.Seed(domainauth.AdminUser{
		Email:     "mock.user@example.com",
		Username:  "mock.user@example.com",
		FirstName: "Mock",
		LastName:  "User",
		IsActive:  true,
	})
	f.sessions.SaveErr = errors.New("redis down")

	result, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})

	assert.Nil(t, result)
	var persistErr *domainauth.SessionPersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestSSOService_Exchange_SessionContents(t *testing.T) {
	f := newSSOFixture()
	seeded := f.users.Seed(domainauth.AdminUser{
		Email:     "mock.user@example.com",
		Username:  "mock.user@example.com",
		FirstName: "Mock",
		LastName:  "User",
		IsActive:  true,
	})

	result, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})

	require.NoError(t, err)
	sess := result.Session
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, seeded.ID, sess.UserID)
	assert.Equal(t, "signed:"+seeded.ID+":"+sess.ID, sess.SignedToken)
	assert.Equal(t, f.signer.Now, sess.IssuedAt)
	assert.Equal(t, f.signer.Now.Add(30*time.Minute), sess.ExpiresAt)
	assert.Equal(t, f.signer.Now.Add(12*time.Hour), sess.AbsoluteExpiresAt)
	assert.NotEmpty(t, sess.DeviceFingerprint)
	assert.Equal(t, "Test Device", sess.DeviceName)
	assert.Equal(t, domainauth.SessionStatusActive, sess.Status)

	stored, getErr := f.sessions.Get(context.Background(), sess.ID)
	require.NoError(t, getErr)
	assert.Equal(t, sess, stored)
}

func TestSSOService_Exchange_RepeatLoginIsIdempotent(t *testing.T) {
	f := newSSOFixture()

	first, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})
	require.NoError(t, err)
	require.True(t, first.Provisioned)

	second, err := f.service.Exchange(context.Background(), ExchangeInput{
		RawToken: "token",
		Device:   testDevice(),
	})
	require.NoError(t, err)
	assert.False(t, second.Provisioned)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, 1, f.users.Len())
	assert.NotEqual(t, first.Session.ID, second.Session.ID)
	assert.Equal(t, 2, f.sessions.Len())
}
