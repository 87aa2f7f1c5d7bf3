package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      AuthServiceInterface // optional; auth routes are skipped when nil
	Resolver  PrincipalResolver
	Gate      Authorizer
	Directory UserDirectory
	Health    HealthChecker

	CookieDomain   string
	SignInPath     string       // default service.DefaultSignInPath
	RestrictedPath string       // default service.DefaultRestrictedPath
	Logger         *slog.Logger // optional
}

// NewRouter creates and configures a new HTTP router.
// Every request is resolved once by ResolvePrincipal before routing.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	restricted := services.RestrictedPath
	if restricted == "" {
		restricted = service.DefaultRestrictedPath
	}

	mux := http.NewServeMux()

	health := &HealthHandlers{Svc: services.Health}
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("HEAD /healthz", health.Health)

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:          services.Auth,
			CookieDomain: services.CookieDomain,
			SignInPath:   services.SignInPath,
			Logger:       logger,
		})
	}
	registerUserRoutes(mux, &UserHandlers{Directory: services.Directory}, services.Gate)

	mux.Handle("GET /{$}", RequireUser(services.Gate)(http.HandlerFunc(Home)))
	mux.HandleFunc("GET "+restricted, Restricted)

	var handler http.Handler = mux
	handler = ResolvePrincipal(services.Resolver)(handler)
	handler = BrowserDetection()(handler)
	handler = Recover(logger)(handler)
	return Logging(logger)(handler)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("GET /auth/signed-out", h.SignedOut)
}

func registerUserRoutes(mux *http.ServeMux, h *UserHandlers, gate Authorizer) {
	anyUser := RequireUser(gate)
	adminOnly := RequireRole(gate, domainauth.RoleAdmin)
	staff := RequireRole(gate, domainauth.RoleAdmin, domainauth.RoleUser)

	mux.Handle("GET /api/me", anyUser(http.HandlerFunc(h.Me)))
	mux.Handle("GET /api/users/{id}", adminOnly(http.HandlerFunc(h.GetByID)))
	mux.Handle("GET /api/users", staff(http.HandlerFunc(h.FindByEmail)))
}
