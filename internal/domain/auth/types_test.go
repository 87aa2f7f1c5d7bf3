package auth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "ADMIN", want: RoleAdmin},
		{in: "admin", want: RoleAdmin},
		{in: " User ", want: RoleUser},
		{in: "guest", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, Role(""), got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllRolesAreValid(t *testing.T) {
	for _, r := range AllRoles() {
		assert.True(t, r.Valid(), "role %q", r)
	}
	assert.False(t, Role("").Valid())
	assert.False(t, Role("SUPERUSER").Valid())
}

func TestRoleSet_Contains(t *testing.T) {
	set := NewRoleSet(RoleAdmin, Role("bogus"), "")

	assert.True(t, set.Contains(RoleAdmin))
	assert.False(t, set.Contains(RoleUser))
	assert.False(t, set.Contains(""))
	assert.Len(t, set, 1)
}

func TestRole_UnmarshalJSONRejectsUnknown(t *testing.T) {
	var s Session
	err := json.Unmarshal([]byte(`{"id":"s1","role":"OWNER"}`), &s)
	require.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"s1","role":"user"}`), &s))
	assert.Equal(t, RoleUser, s.Role)
}

func TestSession_Principal(t *testing.T) {
	verified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := Session{
		ID:            "sess-1",
		UserID:        "u1",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		Role:          RoleAdmin,
		EmailVerified: &verified,
		ExpiresAt:     time.Now().Add(time.Hour),
	}

	p := s.Principal()
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.Equal(t, RoleAdmin, p.Role)
	assert.Equal(t, &verified, p.EmailVerified)
	assert.False(t, s.Expired(time.Now()))
}

func TestDecision(t *testing.T) {
	p := Principal{ID: "u2", Email: "u2@example.com", Role: RoleAdmin}

	g := Granted(p)
	assert.True(t, g.IsGranted())
	got, ok := g.Principal()
	assert.True(t, ok)
	assert.Equal(t, p, got)
	assert.Empty(t, g.RedirectTo())

	d := Denied(DenyInsufficientRole, "/restricted")
	assert.False(t, d.IsGranted())
	_, ok = d.Principal()
	assert.False(t, ok)
	assert.Equal(t, DenyInsufficientRole, d.Reason())
	assert.Equal(t, "/restricted", d.RedirectTo())
}
