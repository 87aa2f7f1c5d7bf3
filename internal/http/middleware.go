package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
)

// PrincipalResolver resolves the caller of a request from its session id.
type PrincipalResolver interface {
	GetCurrentUser(ctx context.Context, sessionID string) (*domainauth.Principal, bool)
}

// Authorizer evaluates access requirements against a principal.
type Authorizer interface {
	RequireUser(p *domainauth.Principal) domainauth.Decision
	RequireRole(p *domainauth.Principal, allowed ...domainauth.Role) domainauth.Decision
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ResolvePrincipal resolves the caller once per request and threads the principal
// through the request context. Anonymous requests continue without one.
func ResolvePrincipal(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				next.ServeHTTP(w, r)
				return
			}
			if p, ok := resolver.GetCurrentUser(r.Context(), sessionIDFromRequest(r)); ok {
				r = r.WithContext(SetPrincipalInContext(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser returns a middleware that admits any resolved principal.
func RequireUser(gate Authorizer) func(http.Handler) http.Handler {
	return requireDecision(func(p *domainauth.Principal) domainauth.Decision {
		return gate.RequireUser(p)
	})
}

// RequireRole returns a middleware that admits principals holding one of the allowed roles.
func RequireRole(gate Authorizer, allowed ...domainauth.Role) func(http.Handler) http.Handler {
	roles := append([]domainauth.Role(nil), allowed...)
	return requireDecision(func(p *domainauth.Principal) domainauth.Decision {
		return gate.RequireRole(p, roles...)
	})
}

func requireDecision(decide func(*domainauth.Principal) domainauth.Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())
			d := decide(p)
			if !d.IsGranted() {
				writeDenial(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeDenial turns a denied decision into a response. Browsers are sent to the
// decision's target; API callers get a JSON error naming it.
func writeDenial(w http.ResponseWriter, r *http.Request, d domainauth.Decision) {
	slog.DebugContext(r.Context(), "request denied", "reason", d.Reason(), "path", r.URL.Path)

	target := d.RedirectTo()
	if d.Reason() == domainauth.DenyUnauthenticated {
		target = withQueryParam(target, "redirect_uri", redirectPathForRequest(r))
	}

	if !IsBrowserRequest(r) {
		p := ErrorParams{
			Code:       http.StatusForbidden,
			ErrCode:    "insufficient_permissions",
			Err:        errors.New("insufficient permissions"),
			RedirectTo: target,
		}
		if d.Reason() == domainauth.DenyUnauthenticated {
			p.Code = http.StatusUnauthorized
			p.ErrCode = "authentication_required"
			p.Err = errors.New("authentication required")
		}
		WriteError(w, p)
		return
	}

	if IsHTMX(r) {
		SetHXRedirect(w, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// browserRequestKey is an unexported context key type for browser request detection.
type browserRequestKey struct{}

// BrowserDetection returns a middleware that detects browser requests vs API requests.
// Downstream handlers and denials use it to choose between redirects and JSON.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowserRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest returns true if the current request is from a browser.
func IsBrowserRequest(r *http.Request) bool {
	if isBrowser, ok := r.Context().Value(browserRequestKey{}).(bool); ok {
		return isBrowser
	}
	// Fallback to direct detection if middleware wasn't used
	return isBrowserRequest(r)
}

// isBrowserRequest determines if a request is from a browser based on:
// 1. Path prefix - API routes start with /api/
// 2. HTMX requests are browser requests
// 3. Accept header - browsers typically accept text/html.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		// No Accept header, assume browser for non-API routes
		return true
	}
	return strings.Contains(accept, "text/html")
}
