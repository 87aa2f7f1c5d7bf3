package auth

// Package auth contains domain-level types for authentication, sessions, and authorization.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// The set is closed: only the constants below are valid. The zero value means
// "no role" and never satisfies a role requirement.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// AllRoles lists every valid role. Adding a role means adding it here and to Valid.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleUser}
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole converts a stored or configured role string into a Role.
// Matching is case-insensitive; unknown values return an error.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid role: %q (valid options: ADMIN, USER)", s)
	}
	return r, nil
}

// RoleOrAbsent returns the parsed role, or the zero Role when s is not a valid role.
func RoleOrAbsent(s string) Role {
	r, err := ParseRole(s)
	if err != nil {
		return ""
	}
	return r
}

// UnmarshalText implements encoding.TextUnmarshaler so config and JSON cannot carry unknown roles.
func (r *Role) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = ""
		return nil
	}
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleSet is a normalized set of allowed roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles. Invalid and zero roles are dropped.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.Valid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// Contains reports whether r is in the set. The zero Role is never contained.
func (s RoleSet) Contains(r Role) bool {
	if r == "" {
		return false
	}
	_, ok := s[r]
	return ok
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable provider subject (e.g., samAccountName or sub)
	Provider  string // provider name used for account linking (e.g., "oidc")
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Principal is the authenticated identity attached to a session.
// ID and Email are always set when a Principal exists.
type Principal struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	Role          Role       `json:"role,omitempty"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
}

// HasRole reports whether the principal holds a valid role.
func (p Principal) HasRole() bool { return p.Role.Valid() }

// WithRole returns a copy of p carrying role r.
func (p Principal) WithRole(r Role) Principal {
	p.Role = r
	return p
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Role          Role       `json:"role,omitempty"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// Principal returns the identity bound to this session.
func (s Session) Principal() Principal {
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	return Principal{
		ID:            s.UserID,
		Email:         s.Email,
		Name:          name,
		Role:          s.Role,
		EmailVerified: s.EmailVerified,
	}
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }
