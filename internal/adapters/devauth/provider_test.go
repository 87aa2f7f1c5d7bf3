package devauth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/onboard-admin/internal/ports"
)

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{
		UserID:    "dev-user",
		Email:     "dev@example.com",
		FirstName: "Dev",
		Groups:    []string{"onboard-admins"},
	})
	require.NoError(t, err)

	authURL, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	require.NoError(t, err)
	require.NotEmpty(t, state)
	require.NotEmpty(t, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "/auth/callback", u.Path)
	assert.Equal(t, "dev", u.Query().Get("code"))
	assert.Equal(t, state, u.Query().Get("state"))

	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	require.NoError(t, err)
	assert.Equal(t, "dev-user", id.UserID)
	assert.Equal(t, "dev@example.com", id.Email)
	assert.Equal(t, ProviderName, id.Provider)
	assert.Equal(t, "Dev", id.FirstName)
	assert.Equal(t, []string{"onboard-admins"}, id.Groups)
}

func TestProvider_ExchangeRefreshesExpiry(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "u", Email: "u@example.com", SessionDuration: time.Hour})
	require.NoError(t, err)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prov.now = func() time.Time { return now }

	id1, err := prov.Exchange(context.Background(), ports.ExchangeInput{})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), id1.ExpiresAt)

	now = now.Add(3 * time.Hour)
	id2, err := prov.Exchange(context.Background(), ports.ExchangeInput{})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), id2.ExpiresAt)
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{Email: "x@example.com"})
	assert.ErrorContains(t, err, "UserID is required")

	_, err = NewProvider(Config{UserID: "x"})
	assert.ErrorContains(t, err, "Email is required")

	p, err := NewProvider(Config{UserID: "x", Email: "x@example.com", CallbackPath: "/cb"})
	require.NoError(t, err)
	authURL, _, _, err := p.Begin(context.Background(), ports.BeginInput{})
	require.NoError(t, err)
	assert.Contains(t, authURL, "/cb?")
}
