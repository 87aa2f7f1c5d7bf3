package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/onboard-admin/config"
	"github.com/target/onboard-admin/internal/data"
	"github.com/target/onboard-admin/internal/ports"
	"github.com/target/onboard-admin/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth      *service.AuthService // nil when authentication is not configured
	Directory *service.UserDirectory
	Resolver  *service.SessionResolver
	Gate      *service.AuthorizationGate
	Health    *service.HealthService
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires repositories and services for the HTTP surface.
func NewServices(ctx context.Context, deps *ServiceDeps) ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
	}

	users := data.NewUserRepo(deps.DB)
	directory := service.NewUserDirectory(service.UserDirectoryOptions{Store: users, Logger: logger})

	auth := BuildAuthService(ctx, AuthConfig{
		Auth:          cfg.Auth,
		RedisClient:   deps.RedisClient,
		SessionPrefix: cfg.Redis.SessionPrefix,
		Directory:     directory,
		Accounts:      data.NewAccountRepo(deps.DB),
		Logger:        logger,
	})

	resolverOpts := service.SessionResolverOptions{Logger: logger}
	if auth != nil {
		resolverOpts.Sessions = auth
	}
	if cfg.Auth.RefreshRoles() {
		resolverOpts.Roles = directory
	}

	return ServiceContainer{
		Auth:      auth,
		Directory: directory,
		Resolver:  service.NewSessionResolver(resolverOpts),
		Gate: service.NewAuthorizationGate(service.AuthorizationGateOptions{
			SignInPath:     cfg.Auth.SignInPath,
			RestrictedPath: cfg.Auth.RestrictedPath,
			Logger:         logger,
		}),
		Health: service.NewHealthService(service.HealthServiceOptions{
			DB:      pingerFor(deps.DB, users),
			Timeout: cfg.Health.Timeout,
			Logger:  logger,
		}),
	}
}

// pingerFor leaves the probe without a target when no database is configured,
// which CheckHealth reports as down.
//
//nolint:ireturn // a nil interface is the "not configured" signal.
func pingerFor(db *sql.DB, users *data.UserRepo) ports.Pinger {
	if db == nil {
		return nil
	}
	return users
}

// ServiceOrchestrationConfig contains everything needed to run the server.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown serves HTTP until SIGINT/SIGTERM or ctx is cancelled,
// then drains the server within the configured shutdown timeout.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := NewHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})
	return serve(ctx, server, cfg.Config.HTTP, logger)
}

func serve(ctx context.Context, server httpServer, httpCfg config.HTTPConfig, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", httpCfg.Addr)
		return ListenAndServe(server)
	})

	g.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(gctx),
			Server:  server,
			Timeout: httpCfg.ShutdownTimeout,
			Logger:  logger,
		})
	})

	return g.Wait()
}
