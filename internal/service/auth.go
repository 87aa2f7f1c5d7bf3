package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/domain/model"
	"github.com/target/onboard-admin/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper
	// Directory, when set, binds signed-in identities to directory users by email.
	Directory ports.UserLookup
	Accounts  ports.AccountLinker
	Logger    *slog.Logger
	Now       func() time.Time
}

// AuthService orchestrates authentication flows by coordinating provider, role mapping, and session persistence.
type AuthService struct {
	provider  ports.AuthProvider
	sessions  ports.SessionStore
	roles     ports.RoleMapper
	directory ports.UserLookup
	accounts  ports.AccountLinker
	logger    *slog.Logger
	now       func() time.Time
}

var (
	errSessionExpired   = errors.New("session expired")
	errDirectoryFailure = errors.New("user directory unavailable")
)

var _ ports.SessionProvider = (*AuthService)(nil)

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	s := &AuthService{
		provider:  opts.Provider,
		sessions:  opts.Sessions,
		roles:     opts.Roles,
		directory: opts.Directory,
		accounts:  opts.Accounts,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	input := ports.BeginInput{RedirectURL: redirectURL}
	authURL, state, nonce, err := s.provider.Begin(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin completes an authentication flow by exchanging the code for an identity,
// binding it to a directory user when one exists, and persisting a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	// Exchange authorization code for identity
	exchangeInput := ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	}
	identity, err := s.provider.Exchange(ctx, exchangeInput)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	session, err := s.buildSession(ctx, identity)
	if err != nil {
		return nil, err
	}

	// Persist session
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &CompleteLoginResult{
		Session: session,
	}, nil
}

// GetSession retrieves a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.now()) {
		// Clean up expired session
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func (s *AuthService) buildSession(ctx context.Context, identity domainauth.Identity) (domainauth.Session, error) {
	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     model.NormalizeEmail(identity.Email),
		ExpiresAt: identity.ExpiresAt,
	}
	if s.roles != nil {
		session.Role = domainauth.RoleOrAbsent(string(s.roles.Map(identity.Groups)))
	}
	if s.directory == nil {
		return session, nil
	}

	res := s.directory.LookupByEmail(ctx, identity.Email)
	switch res.Status {
	case model.LookupFound:
		u := res.User
		session.UserID = u.ID
		session.Role = domainauth.RoleOrAbsent(string(u.Role))
		session.EmailVerified = u.EmailVerified
		if session.FirstName == "" && session.LastName == "" {
			session.FirstName, session.LastName = u.Name, u.Surname
		}
		s.linkAccount(ctx, u.ID, identity)
	case model.LookupFault:
		return domainauth.Session{}, fmt.Errorf("resolve directory user: %w", errors.Join(errDirectoryFailure, res.Err))
	default:
		s.logger.InfoContext(ctx, "signed-in identity has no directory entry", "provider", identity.Provider)
	}
	return session, nil
}

// linkAccount is best effort; a failed link does not block sign-in.
func (s *AuthService) linkAccount(ctx context.Context, userID string, identity domainauth.Identity) {
	if s.accounts == nil || identity.Provider == "" || identity.UserID == "" {
		return
	}
	acct := model.Account{UserID: userID, Provider: identity.Provider, ProviderAccountID: identity.UserID}
	if err := s.accounts.Link(ctx, acct); err != nil {
		s.logger.WarnContext(ctx, "failed to link provider account", "user_id", userID, "provider", identity.Provider, "error", err)
	}
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	// Use UUID for session ID - it's URL-safe and has good entropy
	id := uuid.New()
	return id.String()
}
