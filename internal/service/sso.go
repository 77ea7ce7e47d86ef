package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/target/admin-sso-bridge/internal/data"
	domainauth "github.com/target/admin-sso-bridge/internal/domain/auth"
	apperrors "github.com/target/admin-sso-bridge/internal/errors"
	"github.com/target/admin-sso-bridge/internal/ports"
)

// SSOServiceOptions groups dependencies for SSOService.
type SSOServiceOptions struct {
	Verifier ports.TokenVerifier
	Users    ports.UserDirectory
	Roles    ports.RoleDirectory
	Signer   ports.SessionSigner
	Sessions ports.SessionStore
	Devices  ports.Fingerprinter

	// RoleCode is the well-known code of the role attached to accounts
	// provisioned through the exchange.
	RoleCode string

	// AbsoluteTTL caps a session's total lifetime regardless of activity.
	AbsoluteTTL time.Duration
}

// SSOService orchestrates the SSO token exchange: verify the inbound
// identity token, resolve or provision the admin account, and issue a
// persisted session.
type SSOService struct {
	verifier    ports.TokenVerifier
	users       ports.UserDirectory
	roles       ports.RoleDirectory
	signer      ports.SessionSigner
	sessions    ports.SessionStore
	devices     ports.Fingerprinter
	roleCode    string
	absoluteTTL time.Duration
}

// NewSSOService constructs a new SSOService.
func NewSSOService(opts SSOServiceOptions) *SSOService {
	return &SSOService{
		verifier:    opts.Verifier,
		users:       opts.Users,
		roles:       opts.Roles,
		signer:      opts.Signer,
		sessions:    opts.Sessions,
		devices:     opts.Devices,
		roleCode:    opts.RoleCode,
		absoluteTTL: opts.AbsoluteTTL,
	}
}

// ExchangeInput groups parameters for an SSO token exchange.
type ExchangeInput struct {
	RawToken string
	Device   ports.DeviceInfo
}

// ExchangeResult contains the outcome of a successful exchange.
type ExchangeResult struct {
	User        *domainauth.AdminUser
	Session     domainauth.Session
	Provisioned bool
}

// Exchange performs the full token-to-session exchange. Every failure
// short-circuits with a domain error; a session cookie must only ever be
// bound to the returned session after a nil error.
func (s *SSOService) Exchange(ctx context.Context, input ExchangeInput) (*ExchangeResult, error) {
	if input.RawToken == "" {
		return nil, domainauth.ErrMissingToken
	}

	claim, err := s.verifier.Verify(input.RawToken)
	if err != nil {
		return nil, err
	}

	if claim.Email == "" {
		return nil, domainauth.ErrMissingEmail
	}
	if addr, parseErr := mail.ParseAddress(claim.Email); parseErr != nil || addr.Address != claim.Email {
		return nil, domainauth.ErrInvalidEmail
	}

	user, provisioned, err := s.resolveAccount(ctx, claim)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, domainauth.ErrInactiveAccount
	}

	session, err := s.issueSession(ctx, user.ID, input.Device)
	if err != nil {
		return nil, err
	}

	return &ExchangeResult{
		User:        user,
		Session:     session,
		Provisioned: provisioned,
	}, nil
}

// resolveAccount finds the account for a verified claim, repairing legacy
// records and provisioning a new account when nothing matches. Email is
// the sole authoritative lookup key.
func (s *SSOService) resolveAccount(ctx context.Context, claim domainauth.Claim) (*domainauth.AdminUser, bool, error) {
	first, last := claim.DeriveNames()

	user, err := s.users.FindByEmail(ctx, claim.Email)
	switch {
	case err == nil:
		if user.FirstName != first || user.LastName != last {
			updated, updateErr := s.users.UpdateNames(ctx, user.ID, first, last)
			if updateErr != nil {
				return nil, false, fmt.Errorf("update account names: %w", updateErr)
			}
			return updated, false, nil
		}
		if touchErr := s.users.TouchLastLogin(ctx, user.ID); touchErr != nil {
			return nil, false, fmt.Errorf("stamp last login: %w", touchErr)
		}
		return user, false, nil
	case !isUserNotFound(err):
		return nil, false, fmt.Errorf("lookup account by email: %w", err)
	}

	// Migrated records may carry the email in the username column with the
	// email column unset. Repair those in place instead of provisioning a
	// duplicate.
	legacy, err := s.users.FindByUsername(ctx, claim.Email)
	switch {
	case err == nil:
		repaired, repairErr := s.users.RepairLegacyEmail(ctx, legacy.ID, claim.Email)
		if repairErr != nil {
			return nil, false, fmt.Errorf("repair legacy account: %w", repairErr)
		}
		return repaired, false, nil
	case !isUserNotFound(err):
		return nil, false, fmt.Errorf("lookup account by username: %w", err)
	}

	user, err = s.provisionAccount(ctx, claim, first, last)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// provisionAccount creates a new active account carrying the configured
// admin role. The email UNIQUE constraint is the race guard: when a
// concurrent exchange wins the insert, the winner's row is returned.
func (s *SSOService) provisionAccount(ctx context.Context, claim domainauth.Claim, first, last string) (*domainauth.AdminUser, error) {
	role, err := s.roles.FindByCode(ctx, s.roleCode)
	if err != nil {
		if errors.Is(err, data.ErrRoleNotFound) || apperrors.IsNotFound(err) {
			return nil, domainauth.ErrRoleNotConfigured
		}
		return nil, fmt.Errorf("lookup admin role: %w", err)
	}

	// Re-check right before the insert to narrow the race window.
	if existing, findErr := s.users.FindByEmail(ctx, claim.Email); findErr == nil {
		return existing, nil
	}

	created, err := s.users.Create(ctx, domainauth.AdminUser{
		Email:     claim.Email,
		Username:  claim.Email,
		FirstName: first,
		LastName:  last,
		IsActive:  true,
	}, *role)
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			winner, findErr := s.users.FindByEmail(ctx, claim.Email)
			if findErr != nil {
				return nil, fmt.Errorf("read provisioning winner: %w", findErr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("provision account: %w", err)
	}
	return created, nil
}

// issueSession mints and persists the session record for a resolved
// account. The record is durably stored before any token leaves the
// service.
func (s *SSOService) issueSession(ctx context.Context, userID string, device ports.DeviceInfo) (domainauth.Session, error) {
	sessionID := uuid.NewString()

	token, issuedAt, expiresAt, err := s.signer.Sign(userID, sessionID)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("sign session token: %w", err)
	}

	fingerprint, deviceName := s.devices.Fingerprint(device)

	session := domainauth.Session{
		ID:                sessionID,
		UserID:            userID,
		SignedToken:       token,
		IssuedAt:          issuedAt,
		ExpiresAt:         expiresAt,
		AbsoluteExpiresAt: issuedAt.Add(s.absoluteTTL),
		DeviceFingerprint: fingerprint,
		DeviceName:        deviceName,
		Status:            domainauth.SessionStatusActive,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return domainauth.Session{}, &domainauth.SessionPersistenceError{Cause: saveErr}
	}

	return session, nil
}

func isUserNotFound(err error) bool {
	return errors.Is(err, data.ErrUserNotFound) || apperrors.IsNotFound(err)
}
