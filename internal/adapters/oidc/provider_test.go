package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/target/onboard-admin/internal/ports"
)

// fakeIdP serves discovery, token, and userinfo endpoints.
type fakeIdP struct {
	server   *httptest.Server
	userinfo map[string]any
}

func newFakeIdP(t *testing.T, userinfo map[string]any) *fakeIdP {
	t.Helper()
	f := &fakeIdP{userinfo: userinfo}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"issuer":                 f.server.URL,
			"authorization_endpoint": f.server.URL + "/authorize",
			"token_endpoint":         f.server.URL + "/token",
			"userinfo_endpoint":      f.server.URL + "/userinfo",
			"jwks_uri":               f.server.URL + "/jwks",
		})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		writeJSON(w, map[string]any{"access_token": "at-1", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, f.userinfo)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestProvider(t *testing.T, idp *fakeIdP, scope string) *Provider {
	t.Helper()
	p, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "onboard-admin",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        scope,
		DiscoveryURL: idp.server.URL + "/.well-known/openid-configuration",
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_Discovery(t *testing.T) {
	idp := newFakeIdP(t, nil)
	p := newTestProvider(t, idp, "openid profile email")

	assert.Equal(t, idp.server.URL+"/authorize", p.config.Endpoint.AuthURL)
	assert.Equal(t, idp.server.URL+"/token", p.config.Endpoint.TokenURL)
	assert.Equal(t, DefaultProviderName, p.Name())
	assert.True(t, p.hasOpenIDScope())
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	base := ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x/cb", DiscoveryURL: "http://example.invalid"}
	tests := []struct {
		name   string
		mutate func(*ProviderConfig)
		errMsg string
	}{
		{name: "client id", mutate: func(c *ProviderConfig) { c.ClientID = "" }, errMsg: "client ID is required"},
		{name: "client secret", mutate: func(c *ProviderConfig) { c.ClientSecret = "" }, errMsg: "client secret is required"},
		{name: "redirect", mutate: func(c *ProviderConfig) { c.RedirectURL = "" }, errMsg: "redirect URL is required"},
		{name: "discovery", mutate: func(c *ProviderConfig) { c.DiscoveryURL = "" }, errMsg: "discovery URL is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			_, err := NewProvider(context.Background(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIssuerFromDiscoveryURL(t *testing.T) {
	assert.Equal(t, "https://idp.example.com", issuerFromDiscoveryURL("https://idp.example.com/.well-known/openid-configuration"))
	assert.Equal(t, "https://idp.example.com", issuerFromDiscoveryURL("https://idp.example.com/"))
}

func TestProvider_Begin(t *testing.T) {
	p := newTestProvider(t, newFakeIdP(t, nil), "openid email")

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "http://localhost:8080/auth/callback"})
	require.NoError(t, err)
	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)
	assert.NotEqual(t, state, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:8080/auth/callback", q.Get("redirect_uri"))

	_, _, _, err = p.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
}

func TestProvider_Exchange_ValidationErrors(t *testing.T) {
	p := newTestProvider(t, newFakeIdP(t, nil), "openid")
	for _, in := range []ports.ExchangeInput{
		{State: "s", Nonce: "n"},
		{Code: "c", Nonce: "n"},
		{Code: "c", State: "s"},
	} {
		_, err := p.Exchange(context.Background(), in)
		assert.Error(t, err)
	}
}

func TestProvider_Exchange_UserInfoFlow(t *testing.T) {
	idp := newFakeIdP(t, map[string]any{
		"sub":         "00u1abc",
		"email":       "new.hire@example.com",
		"given_name":  "New",
		"family_name": "Hire",
		"groups":      []string{"onboard-users"},
	})
	p := newTestProvider(t, idp, "profile email")

	before := time.Now()
	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "00u1abc", id.UserID)
	assert.Equal(t, "oidc", id.Provider)
	assert.Equal(t, "new.hire@example.com", id.Email)
	assert.Equal(t, "New", id.FirstName)
	assert.Equal(t, "Hire", id.LastName)
	assert.Equal(t, []string{"onboard-users"}, id.Groups)
	assert.True(t, id.ExpiresAt.After(before))
}

func TestProvider_Exchange_TokenError(t *testing.T) {
	p := newTestProvider(t, newFakeIdP(t, nil), "profile")

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "bad-code", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange code for token")
}

func TestProvider_Exchange_MissingIDToken(t *testing.T) {
	p := newTestProvider(t, newFakeIdP(t, nil), "openid")

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing id_token"), err.Error())
}

func TestProvider_Exchange_IncompleteIdentity(t *testing.T) {
	idp := newFakeIdP(t, map[string]any{"sub": "00u1abc"})
	p := newTestProvider(t, idp, "profile")

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subject or email")
}

func TestGetIDTokenFromToken(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	raw, err := getIDTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", raw)

	_, err = getIDTokenFromToken((&oauth2.Token{}).WithExtra(map[string]any{"not_id": "x"}))
	assert.ErrorContains(t, err, "missing id_token")

	_, err = getIDTokenFromToken(nil)
	assert.ErrorContains(t, err, "nil token")
}

func TestMapClaims(t *testing.T) {
	ad := mapClaims(claimSet{
		Sub:            "sub-123",
		SamAccountName: "z001abc",
		FirstName:      "First",
		LastName:       "Last",
		Mail:           "mail@example.com",
		MemberOf:       []string{"CN=APP-Onboard-Admin,OU=Application,DC=corp,DC=example,DC=com"},
	})
	assert.Equal(t, "z001abc", ad.userID)
	assert.Equal(t, "mail@example.com", ad.email)
	assert.Equal(t, "First", ad.givenName)
	assert.Len(t, ad.groups, 1)

	std := mapClaims(claimSet{Sub: "sub-9", Email: "std@example.com", Mail: "ad@example.com", GivenName: "Std", Groups: []string{"g"}, MemberOf: []string{"m"}})
	assert.Equal(t, "sub-9", std.userID)
	assert.Equal(t, "std@example.com", std.email)
	assert.Equal(t, "Std", std.givenName)
	assert.Equal(t, []string{"g"}, std.groups)
}

func TestFillMissing_KeepsExisting(t *testing.T) {
	f := idFields{userID: "keep", email: "keep@example.com", groups: []string{"x"}}
	fillMissing(&f, idFields{userID: "other", email: "other@example.com", givenName: "Given", groups: []string{"y"}})
	assert.Equal(t, "keep", f.userID)
	assert.Equal(t, "keep@example.com", f.email)
	assert.Equal(t, "Given", f.givenName)
	assert.Equal(t, []string{"x"}, f.groups)
}

func TestGenerateRandomString(t *testing.T) {
	a, err := generateRandomString(16)
	require.NoError(t, err)
	b, err := generateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)

	empty, err := generateRandomString(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
