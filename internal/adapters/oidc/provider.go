package oidc

// Package oidc provides the OIDC/OAuth2 sign-in adapter.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/ports"
)

// DefaultProviderName is recorded on identities and account links when ProviderConfig.Name is empty.
const DefaultProviderName = "oidc"

var _ ports.AuthProvider = (*Provider)(nil)

// Provider implements ports.AuthProvider using OIDC discovery and the authorization code flow.
type Provider struct {
	name     string
	config   *oauth2.Config
	provider *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
	client   *http.Client
	now      func() time.Time

	groupsClaim string
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	Name         string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	// GroupsClaim is an optional JMESPath expression over the raw claims,
	// e.g. "realm_access.roles". Empty uses groups, then memberof.
	GroupsClaim  string
	HTTPClient   *http.Client // defaults to a client with a 30s timeout
}

func (c ProviderConfig) validate() error {
	switch {
	case c.ClientID == "":
		return errors.New("client ID is required")
	case c.ClientSecret == "":
		return errors.New("client secret is required")
	case c.RedirectURL == "":
		return errors.New("redirect URL is required")
	case c.DiscoveryURL == "":
		return errors.New("discovery URL is required")
	}
	return validateGroupsClaim(c.GroupsClaim)
}

// issuerFromDiscoveryURL accepts either the issuer or its well-known document URL.
func issuerFromDiscoveryURL(u string) string {
	issuer := strings.TrimSuffix(u, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return issuer
}

// NewProvider performs discovery against the issuer and returns a configured provider.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	ctx = gooidc.ClientContext(ctx, httpClient)

	op, err := gooidc.NewProvider(ctx, issuerFromDiscoveryURL(config.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	name := config.Name
	if name == "" {
		name = DefaultProviderName
	}

	return &Provider{
		name:     name,
		provider: op,
		verifier: op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       strings.Fields(config.Scope),
			Endpoint:     op.Endpoint(),
		},
		client:      httpClient,
		now:         time.Now,
		groupsClaim: strings.TrimSpace(config.GroupsClaim),
	}, nil
}

// Name returns the provider name recorded on identities.
func (p *Provider) Name() string { return p.name }

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri comes from the oauth2 config and must match the registered value
	authURL := p.config.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}
	if in.Nonce == "" {
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.client)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	fields, err := p.extractFromIDToken(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
	}

	if fields.email == "" || fields.userID == "" {
		if fillErr := p.fillFromUserInfo(ctx, token, &fields); fillErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", fillErr)
		}
	}
	if fields.userID == "" || fields.email == "" {
		return domainauth.Identity{}, errors.New("identity provider returned no subject or email")
	}

	expiresAt := p.now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.Identity{
		UserID:    fields.userID,
		Provider:  p.name,
		FirstName: fields.givenName,
		LastName:  fields.familyName,
		Email:     fields.email,
		Groups:    fields.groups,
		ExpiresAt: expiresAt,
	}, nil
}

type idFields struct {
	userID     string
	email      string
	givenName  string
	familyName string
	groups     []string
}

// claimSet accepts both standard OIDC claims and the AD/ADFS shape.
type claimSet struct {
	Sub            string   `json:"sub"`
	Email          string   `json:"email"`
	GivenName      string   `json:"given_name"`
	FamilyName     string   `json:"family_name"`
	Groups         []string `json:"groups"`
	SamAccountName string   `json:"samaccountname"`
	FirstName      string   `json:"firstname"`
	LastName       string   `json:"lastname"`
	Mail           string   `json:"mail"`
	MemberOf       []string `json:"memberof"`
	Nonce          string   `json:"nonce"`
}

func (p *Provider) extractFromIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) (idFields, error) {
	if !p.hasOpenIDScope() {
		return idFields{}, nil
	}
	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return idFields{}, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return idFields{}, fmt.Errorf("verify id_token: %w", err)
	}
	var claims claimSet
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return idFields{}, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if claims.Nonce != expectedNonce {
		return idFields{}, errors.New("invalid nonce")
	}
	f := mapClaims(claims)
	if err := p.applyGroupsClaim(idTok.Claims, &f); err != nil {
		return idFields{}, err
	}
	return f, nil
}

// applyGroupsClaim replaces f.groups with the configured claim path result.
func (p *Provider) applyGroupsClaim(decode func(any) error, f *idFields) error {
	if p.groupsClaim == "" {
		return nil
	}
	var raw map[string]any
	if err := decode(&raw); err != nil {
		return fmt.Errorf("decode raw claims: %w", err)
	}
	groups, err := searchGroups(p.groupsClaim, raw)
	if err != nil {
		return err
	}
	f.groups = groups
	return nil
}

func (p *Provider) fillFromUserInfo(ctx context.Context, tok *oauth2.Token, f *idFields) error {
	ui, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}
	var claims claimSet
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return fmt.Errorf("decode user info: %w", claimsErr)
	}
	src := mapClaims(claims)
	if err := p.applyGroupsClaim(ui.Claims, &src); err != nil {
		return err
	}
	fillMissing(f, src)
	return nil
}

// mapClaims prefers AD account names over the opaque subject and standard
// claims over their AD equivalents.
func mapClaims(c claimSet) idFields {
	groups := c.Groups
	if len(groups) == 0 {
		groups = c.MemberOf
	}
	return idFields{
		userID:     firstNonEmpty(c.SamAccountName, c.Sub),
		email:      firstNonEmpty(c.Email, c.Mail),
		givenName:  firstNonEmpty(c.GivenName, c.FirstName),
		familyName: firstNonEmpty(c.FamilyName, c.LastName),
		groups:     slices.Clone(groups),
	}
}

// fillMissing copies fields from src into f only where f is empty.
func fillMissing(f *idFields, src idFields) {
	f.userID = firstNonEmpty(f.userID, src.userID)
	f.email = firstNonEmpty(f.email, src.email)
	f.givenName = firstNonEmpty(f.givenName, src.givenName)
	f.familyName = firstNonEmpty(f.familyName, src.familyName)
	if len(f.groups) == 0 {
		f.groups = src.groups
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

func (p *Provider) hasOpenIDScope() bool {
	return slices.Contains(p.config.Scopes, gooidc.ScopeOpenID)
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
