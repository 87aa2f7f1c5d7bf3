package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
)

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, ctx, SetPrincipalInContext(ctx, nil))
	_, ok := PrincipalFromContext(ctx)
	assert.False(t, ok)

	p := &domainauth.Principal{ID: "u1", Email: "u1@example.com"}
	got, ok := PrincipalFromContext(SetPrincipalInContext(ctx, p))
	require.True(t, ok)
	assert.Same(t, p, got)
}

func TestSessionIDFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, sessionIDFromRequest(req))

	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"})
	assert.Equal(t, "abc", sessionIDFromRequest(req))
}
