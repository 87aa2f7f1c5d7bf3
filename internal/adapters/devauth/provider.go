package devauth

// Package devauth provides a config-driven AuthProvider for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/ports"
)

// ProviderName is recorded on dev identities and account links.
const ProviderName = "dev"

const defaultSessionDuration = 8 * time.Hour

var _ ports.AuthProvider = (*Provider)(nil)

// Config controls the dev auth provider behavior.
// UserID and Email are required; the rest are optional.
type Config struct {
	UserID          string
	Email           string
	FirstName       string
	LastName        string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
	CallbackPath    string        // default /auth/callback
}

// Provider implements ports.AuthProvider for local development.
// Begin redirects straight back to the callback with locally generated state,
// and Exchange ignores the code and returns the configured identity.
type Provider struct {
	identity        domainauth.Identity
	sessionDuration time.Duration
	callbackPath    string
	now             func() time.Time
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	p := &Provider{
		identity: domainauth.Identity{
			UserID:    cfg.UserID,
			Provider:  ProviderName,
			FirstName: cfg.FirstName,
			LastName:  cfg.LastName,
			Email:     cfg.Email,
			Groups:    append([]string(nil), cfg.Groups...),
		},
		sessionDuration: cfg.SessionDuration,
		callbackPath:    cfg.CallbackPath,
		now:             time.Now,
	}
	if p.sessionDuration <= 0 {
		p.sessionDuration = defaultSessionDuration
	}
	if p.callbackPath == "" {
		p.callbackPath = "/auth/callback"
	}
	return p, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return p.callbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the dev identity with a fresh expiry.
// State and nonce are verified by the HTTP handler against cookies.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	id := p.identity
	id.Groups = append([]string(nil), p.identity.Groups...)
	id.ExpiresAt = p.now().Add(p.sessionDuration)
	return id, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
