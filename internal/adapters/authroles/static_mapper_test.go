package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	m := StaticRoleMapper{AdminGroup: "onboard-admins", UserGroup: "onboard-users"}

	tests := []struct {
		name   string
		groups []string
		want   domainauth.Role
	}{
		{name: "admin", groups: []string{"onboard-admins"}, want: domainauth.RoleAdmin},
		{name: "admin wins", groups: []string{"onboard-users", "onboard-admins"}, want: domainauth.RoleAdmin},
		{name: "user", groups: []string{"other", "onboard-users"}, want: domainauth.RoleUser},
		{name: "case insensitive", groups: []string{" Onboard-Users "}, want: domainauth.RoleUser},
		{name: "no match", groups: []string{"contractors"}, want: ""},
		{name: "nil", groups: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.groups))
		})
	}
}

func TestStaticRoleMapper_EmptyConfigNeverGrants(t *testing.T) {
	assert.Equal(t, domainauth.Role(""), StaticRoleMapper{}.Map([]string{"", "admins"}))
}
