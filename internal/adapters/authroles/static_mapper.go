package authroles

import (
	"strings"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/ports"
)

var _ ports.RoleMapper = StaticRoleMapper{}

// StaticRoleMapper maps identity provider groups to roles by name.
// Group names compare case-insensitively; ADMIN wins over USER.
// An identity in neither group gets no role.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	switch {
	case m.has(groups, m.AdminGroup):
		return domainauth.RoleAdmin
	case m.has(groups, m.UserGroup):
		return domainauth.RoleUser
	default:
		return ""
	}
}

func (m StaticRoleMapper) has(groups []string, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return false
	}
	for _, g := range groups {
		if strings.EqualFold(strings.TrimSpace(g), want) {
			return true
		}
	}
	return false
}
