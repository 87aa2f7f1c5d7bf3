package service

import (
	"context"
	"log/slog"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/domain/model"
	"github.com/target/onboard-admin/internal/ports"
)

// SessionResolverOptions groups dependencies for SessionResolver.
type SessionResolverOptions struct {
	Sessions ports.SessionProvider
	// Roles, when set, is consulted on every resolution so the principal carries
	// the directory's current role instead of the one captured at sign-in.
	Roles  ports.UserLookup
	Logger *slog.Logger
}

// SessionResolver answers "who is calling" for a session id.
// Nothing is memoized; every call reaches the session provider.
type SessionResolver struct {
	sessions ports.SessionProvider
	roles    ports.UserLookup
	logger   *slog.Logger
}

// NewSessionResolver constructs a new SessionResolver.
func NewSessionResolver(opts SessionResolverOptions) *SessionResolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionResolver{
		sessions: opts.Sessions,
		roles:    opts.Roles,
		logger:   logger.With("component", "session_resolver"),
	}
}

// GetSession returns the active session for sessionID. Missing, expired, and
// unreadable sessions are all reported as absent.
func (r *SessionResolver) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, bool) {
	if sessionID == "" || r.sessions == nil {
		return nil, false
	}
	sess, err := r.sessions.GetSession(ctx, sessionID)
	if err != nil {
		r.logger.DebugContext(ctx, "session not resolved", "error", err)
		return nil, false
	}
	if sess == nil {
		return nil, false
	}
	return sess, true
}

// GetCurrentUser returns the principal of the active session, or absent.
func (r *SessionResolver) GetCurrentUser(ctx context.Context, sessionID string) (*domainauth.Principal, bool) {
	sess, ok := r.GetSession(ctx, sessionID)
	if !ok {
		return nil, false
	}
	p := sess.Principal()
	if r.roles == nil {
		return &p, true
	}
	p = r.refreshRole(ctx, p)
	return &p, true
}

func (r *SessionResolver) refreshRole(ctx context.Context, p domainauth.Principal) domainauth.Principal {
	res := r.roles.LookupByID(ctx, p.ID)
	switch res.Status {
	case model.LookupFound:
		role := res.User.Role
		if !role.Valid() {
			role = ""
		}
		return p.WithRole(role)
	case model.LookupFault:
		r.logger.WarnContext(ctx, "role refresh failed; treating role as absent", "user_id", p.ID, "error", res.Err)
	default:
		r.logger.InfoContext(ctx, "session user no longer in directory; treating role as absent", "user_id", p.ID)
	}
	return p.WithRole("")
}
