package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/admin-sso-bridge/internal/domain/auth"
	"github.com/target/admin-sso-bridge/internal/ports"
	"github.com/target/admin-sso-bridge/internal/service"
)

// Contract error messages. The admin panel's SSO client matches on these
// strings, so they are fixed.
const (
	msgMissingToken      = "Missing token"
	msgMissingEmail      = "Email not found in token"
	msgInvalidEmail      = "Invalid email format"
	msgInactiveAccount   = "User account is not active"
	msgRoleMisconfigured = "Admin role configuration error"
	msgAuthFailed        = "Authentication failed"

	invalidTokenPrefix = "Invalid token: "
)

// SSOExchanger is the service surface the SSO handler depends on.
type SSOExchanger interface {
	Exchange(ctx context.Context, input service.ExchangeInput) (*service.ExchangeResult, error)
}

// SSOHandlers serves the SSO login endpoint.
type SSOHandlers struct {
	Svc          SSOExchanger
	CookieName   string
	CookieDomain string
	AdminPath    string
	Logger       *slog.Logger
}

// Login handles GET /sso-login. It exchanges the inbound identity token
// for an admin session, binds the session cookie, and redirects into the
// admin panel. Every failure responds with a contract error body and no
// cookie.
func (h *SSOHandlers) Login(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	result, err := h.Svc.Exchange(r.Context(), service.ExchangeInput{
		RawToken: token,
		Device: ports.DeviceInfo{
			UserAgent: r.UserAgent(),
			ClientIP:  clientIP(r),
		},
	})
	if err != nil {
		h.writeExchangeError(w, r, err)
		return
	}

	h.setSessionCookie(w, r, result.Session)
	http.Redirect(w, r, h.AdminPath, http.StatusFound)
}

// writeExchangeError maps exchange errors to contract status codes and
// bodies. Unexpected errors are logged and answered generically.
func (h *SSOHandlers) writeExchangeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *domainauth.InvalidTokenError
	switch {
	case errors.Is(err, domainauth.ErrMissingToken):
		WriteError(w, http.StatusBadRequest, msgMissingToken)
	case errors.As(err, &invalid):
		WriteError(w, http.StatusUnauthorized, invalidTokenPrefix+invalid.Reason)
	case errors.Is(err, domainauth.ErrMissingEmail):
		WriteError(w, http.StatusBadRequest, msgMissingEmail)
	case errors.Is(err, domainauth.ErrInvalidEmail):
		WriteError(w, http.StatusBadRequest, msgInvalidEmail)
	case errors.Is(err, domainauth.ErrInactiveAccount):
		WriteError(w, http.StatusUnauthorized, msgInactiveAccount)
	case errors.Is(err, domainauth.ErrRoleNotConfigured):
		if h.Logger != nil {
			h.Logger.Error("sso role lookup failed", slog.Any("error", err))
		}
		WriteError(w, http.StatusInternalServerError, msgRoleMisconfigured)
	default:
		if h.Logger != nil {
			h.Logger.Error("sso exchange failed",
				slog.Any("error", err),
				slog.String("path", r.URL.Path))
		}
		WriteError(w, http.StatusInternalServerError, msgAuthFailed)
	}
}

// setSessionCookie binds the signed session token for the admin panel to
// read. MaxAge follows the session's sliding expiry.
func (h *SSOHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    s.SignedToken,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// clientIP extracts the originating client address, preferring proxy
// headers over the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	if rip := r.Header.Get("X-Real-Ip"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
