package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/onboard-admin/config"
	httpx "github.com/target/onboard-admin/internal/http"
)

const (
	defaultAddr            = ":8080"
	defaultShutdownTimeout = 10 * time.Second
	idleTimeout            = 120 * time.Second
)

// httpServer is the slice of *http.Server the lifecycle helpers drive.
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the server and router without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	addr := appCfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = defaultAddr
	}

	return &http.Server{
		Addr:         addr,
		Handler:      httpx.NewRouter(routerServices(cfg.Services, appCfg, logger)),
		ReadTimeout:  appCfg.HTTP.ReadTimeout,
		WriteTimeout: appCfg.HTTP.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}
}

func routerServices(svcs ServiceContainer, appCfg *config.AppConfig, logger *slog.Logger) httpx.RouterServices {
	rs := httpx.RouterServices{
		CookieDomain: appCfg.HTTP.CookieDomain,
		Logger:       logger,
	}
	// Assign only non-nil pointers so the router sees nil interfaces for absent services.
	if svcs.Auth != nil {
		rs.Auth = svcs.Auth
	}
	if svcs.Resolver != nil {
		rs.Resolver = svcs.Resolver
	}
	if svcs.Gate != nil {
		rs.Gate = svcs.Gate
		rs.SignInPath = svcs.Gate.SignInPath()
		rs.RestrictedPath = svcs.Gate.RestrictedPath()
	}
	if svcs.Directory != nil {
		rs.Directory = svcs.Directory
	}
	if svcs.Health != nil {
		rs.Health = svcs.Health
	}
	return rs
}

// ListenAndServe runs the server and treats a graceful close as success.
func ListenAndServe(server httpServer) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  httpServer
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "HTTP server stopped")
	}

	return nil
}
