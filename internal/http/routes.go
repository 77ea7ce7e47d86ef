package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	SSO          SSOExchanger
	CookieName   string
	CookieDomain string
	AdminPath    string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	ssoHandlers := &SSOHandlers{
		Svc:          services.SSO,
		CookieName:   services.CookieName,
		CookieDomain: services.CookieDomain,
		AdminPath:    services.AdminPath,
		Logger:       services.Logger,
	}

	mux.Handle("GET /sso-login", http.HandlerFunc(ssoHandlers.Login))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}
