package service

import (
	"log/slog"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
)

const (
	// DefaultSignInPath is where unauthenticated callers are sent.
	DefaultSignInPath = "/auth/login"
	// DefaultRestrictedPath is where callers without an allowed role are sent.
	DefaultRestrictedPath = "/restricted"
)

// AuthorizationGateOptions groups configuration for AuthorizationGate.
type AuthorizationGateOptions struct {
	SignInPath     string
	RestrictedPath string
	Logger         *slog.Logger
}

// AuthorizationGate decides whether a principal may proceed. It holds no
// per-request state and never mutates the principal it is given.
type AuthorizationGate struct {
	signInPath     string
	restrictedPath string
	logger         *slog.Logger
}

// NewAuthorizationGate constructs a gate, falling back to the default paths when unset.
func NewAuthorizationGate(opts AuthorizationGateOptions) *AuthorizationGate {
	g := &AuthorizationGate{
		signInPath:     opts.SignInPath,
		restrictedPath: opts.RestrictedPath,
		logger:         opts.Logger,
	}
	if g.signInPath == "" {
		g.signInPath = DefaultSignInPath
	}
	if g.restrictedPath == "" {
		g.restrictedPath = DefaultRestrictedPath
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.logger = g.logger.With("component", "authz_gate")
	return g
}

// SignInPath returns the redirect target for unauthenticated callers.
func (g *AuthorizationGate) SignInPath() string { return g.signInPath }

// RestrictedPath returns the redirect target for callers without an allowed role.
func (g *AuthorizationGate) RestrictedPath() string { return g.restrictedPath }

// RequireUser grants any present principal and denies an absent one.
func (g *AuthorizationGate) RequireUser(p *domainauth.Principal) domainauth.Decision {
	if p == nil {
		g.logger.Debug("authorization denied", "reason", domainauth.DenyUnauthenticated)
		return domainauth.Denied(domainauth.DenyUnauthenticated, g.signInPath)
	}
	return domainauth.Granted(*p)
}

// RequireRole grants a principal whose role is in allowed. Authentication is
// checked first and its denial is returned unchanged. An empty allowed set
// denies every caller.
func (g *AuthorizationGate) RequireRole(p *domainauth.Principal, allowed ...domainauth.Role) domainauth.Decision {
	d := g.RequireUser(p)
	if !d.IsGranted() {
		return d
	}
	if !domainauth.NewRoleSet(allowed...).Contains(p.Role) {
		g.logger.Debug("authorization denied",
			"reason", domainauth.DenyInsufficientRole,
			"user_id", p.ID,
			"role", string(p.Role),
		)
		return domainauth.Denied(domainauth.DenyInsufficientRole, g.restrictedPath)
	}
	return d
}
