package bootstrap

import (
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/target/admin-sso-bridge/config"
	"github.com/target/admin-sso-bridge/internal/adapters/device"
	redisstore "github.com/target/admin-sso-bridge/internal/adapters/redis"
	"github.com/target/admin-sso-bridge/internal/adapters/sessiontoken"
	"github.com/target/admin-sso-bridge/internal/adapters/ssotoken"
	"github.com/target/admin-sso-bridge/internal/data"
	"github.com/target/admin-sso-bridge/internal/service"
)

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	SSO *service.SSOService
}

// ServiceDependencies groups the external resources services are built on.
type ServiceDependencies struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  goredis.UniversalClient
}

// BuildServices wires adapters, repositories, and services from loaded
// configuration and live connections.
func BuildServices(deps ServiceDependencies) (ServiceContainer, error) {
	cfg := deps.Config

	verifier, err := ssotoken.NewVerifier(cfg.Auth.SSO.Secret())
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build token verifier: %w", err)
	}

	signer, err := sessiontoken.NewSigner(cfg.Auth.Session.SigningSecret(), cfg.Auth.Session.TTL)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build session signer: %w", err)
	}

	sessions := redisstore.NewSessionStoreWithPrefix(deps.Redis, cfg.Redis.KeyPrefix)

	sso := service.NewSSOService(service.SSOServiceOptions{
		Verifier:    verifier,
		Users:       data.NewAdminUserRepo(deps.DB),
		Roles:       data.NewRoleRepo(deps.DB),
		Signer:      signer,
		Sessions:    sessions,
		Devices:     device.NewFingerprinter(),
		RoleCode:    cfg.Auth.AdminRoleCode,
		AbsoluteTTL: cfg.Auth.Session.AbsoluteTTL,
	})

	return ServiceContainer{SSO: sso}, nil
}
