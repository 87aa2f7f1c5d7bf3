package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"
)

const (
	defaultSignInPath     = "/auth/login"
	defaultRestrictedPath = "/restricted"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// RoleSource selects where a signed-in principal's role comes from on each request.
type RoleSource string

const (
	// RoleSourceDirectory re-reads the role from the user directory on every resolution.
	RoleSourceDirectory RoleSource = "directory"
	// RoleSourceSession trusts the role captured in the session at sign-in.
	RoleSourceSession RoleSource = "session"
)

// UnmarshalText implements encoding.TextUnmarshaler for RoleSource.
func (s *RoleSource) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "directory", "session":
		*s = RoleSource(v)
		return nil
	default:
		return fmt.Errorf("invalid RoleSource: %q (valid options: directory, session)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"onboard-admin"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"onboard-admin"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// GroupsClaim is a JMESPath expression selecting group names from the token claims.
	GroupsClaim string `env:"GROUPS_CLAIM"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID          string        `env:"USER_ID"          envDefault:"dev-user"`
	Email           string        `env:"EMAIL"            envDefault:"dev@example.com"`
	FirstName       string        `env:"FIRST_NAME"       envDefault:"Dev"`
	LastName        string        `env:"LAST_NAME"        envDefault:"User"`
	Groups          []string      `env:"GROUPS"           envDefault:"admins"          envSeparator:";"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the LDAP/AD group DN for admin users.
	// Groups only decide access with AUTH_ROLE_SOURCE=session; under the
	// default directory source the directory role replaces them on every request.
	AdminGroup string `env:"ADMIN_GROUP"`

	// UserGroup is the LDAP/AD group DN for regular users.
	UserGroup string `env:"USER_GROUP"`

	// RoleSource controls whether roles are refreshed from the directory per request.
	RoleSource RoleSource `env:"AUTH_ROLE_SOURCE" envDefault:"directory"`

	// SignInPath is where unauthenticated callers are sent.
	SignInPath string `env:"AUTH_SIGN_IN_PATH" envDefault:"/auth/login"`

	// RestrictedPath is where callers lacking a required role are sent.
	RestrictedPath string `env:"AUTH_RESTRICTED_PATH" envDefault:"/restricted"`
}

// Sanitize resets redirect targets that are not in-app paths.
func (a *AuthConfig) Sanitize() {
	a.SignInPath = sanitizePath(a.SignInPath, defaultSignInPath)
	a.RestrictedPath = sanitizeRestrictedPath(a.RestrictedPath)
	if a.RoleSource == "" {
		a.RoleSource = RoleSourceDirectory
	}
}

// Validate reports settings the selected role source cannot run without.
func (a AuthConfig) Validate() error {
	if a.RoleSource != RoleSourceSession {
		return nil
	}
	if strings.TrimSpace(a.AdminGroup) == "" || strings.TrimSpace(a.UserGroup) == "" {
		return errors.New("ADMIN_GROUP and USER_GROUP are required when AUTH_ROLE_SOURCE=session")
	}
	return nil
}

// RefreshRoles reports whether the session resolver should consult the directory.
func (a AuthConfig) RefreshRoles() bool { return a.RoleSource != RoleSourceSession }

func sanitizePath(p, def string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return def
	}
	if strings.ContainsFunc(p, func(r rune) bool { return r == '\\' || unicode.IsControl(r) }) {
		return def
	}
	return p
}

// Routes the router owns; the restricted page is registered next to them.
var (
	reservedRoutes        = []string{"/", "/healthz"}
	reservedRoutePrefixes = []string{"/api/", "/auth/"}
)

// sanitizeRestrictedPath keeps only literal paths the router does not already serve.
func sanitizeRestrictedPath(p string) string {
	p = sanitizePath(p, defaultRestrictedPath)
	if strings.ContainsAny(p, "{}?# ") || slices.Contains(reservedRoutes, p) {
		return defaultRestrictedPath
	}
	for _, prefix := range reservedRoutePrefixes {
		if strings.HasPrefix(p, prefix) {
			return defaultRestrictedPath
		}
	}
	return p
}
