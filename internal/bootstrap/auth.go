package bootstrap

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/onboard-admin/config"
	"github.com/target/onboard-admin/internal/adapters/authroles"
	"github.com/target/onboard-admin/internal/adapters/devauth"
	"github.com/target/onboard-admin/internal/adapters/oidc"
	redisadapter "github.com/target/onboard-admin/internal/adapters/redis"
	"github.com/target/onboard-admin/internal/ports"
	"github.com/target/onboard-admin/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth          config.AuthConfig
	RedisClient   redis.UniversalClient
	SessionPrefix string
	// Directory and Accounts bind sign-ins to directory users; both are optional.
	Directory ports.UserLookup
	Accounts  ports.AccountLinker
	Logger    *slog.Logger
}

func (c AuthConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid.
func BuildAuthService(ctx context.Context, cfg AuthConfig) *service.AuthService {
	if cfg.RedisClient == nil {
		cfg.logger().Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		return nil
	}

	var (
		prov ports.AuthProvider
		err  error
	)
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err = devauth.NewProvider(devauth.Config{
			UserID:          cfg.Auth.DevAuth.UserID,
			Email:           cfg.Auth.DevAuth.Email,
			FirstName:       cfg.Auth.DevAuth.FirstName,
			LastName:        cfg.Auth.DevAuth.LastName,
			Groups:          cfg.Auth.DevAuth.Groups,
			SessionDuration: cfg.Auth.DevAuth.SessionDuration,
		})
		if err != nil {
			cfg.logger().Warn("failed to create dev auth provider, auth disabled", "error", err)
			return nil
		}
		cfg.logger().Warn("dev auth enabled; every sign-in becomes the configured identity", "user_id", cfg.Auth.DevAuth.UserID)

	case config.AuthModeOAuth:
		prov = buildOIDCProvider(ctx, cfg)
		if prov == nil {
			return nil
		}

	default:
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: redisadapter.NewSessionStoreWithOptions(redisadapter.SessionStoreOptions{
			Client: cfg.RedisClient,
			Prefix: cfg.SessionPrefix,
		}),
		Roles: authroles.StaticRoleMapper{
			AdminGroup: cfg.Auth.AdminGroup,
			UserGroup:  cfg.Auth.UserGroup,
		},
		Directory: cfg.Directory,
		Accounts:  cfg.Accounts,
		Logger:    cfg.Logger,
	})
}

// buildOIDCProvider returns nil (and logs why) unless OAuth is fully configured and discovery succeeds.
//
//nolint:ireturn // the caller stores any ports.AuthProvider.
func buildOIDCProvider(ctx context.Context, cfg AuthConfig) ports.AuthProvider {
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		cfg.logger().Warn("AuthModeOAuth selected but required config missing; auth disabled",
			"discovery_url_empty", oauth.DiscoveryURL == "",
			"client_id_empty", oauth.ClientID == "",
			"client_secret_empty", oauth.ClientSecret == "",
		)
		return nil
	}

	prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
		GroupsClaim:  oauth.GroupsClaim,
	})
	if err != nil {
		cfg.logger().Warn("failed to create OIDC provider, auth disabled", "error", err)
		return nil
	}
	return prov
}
