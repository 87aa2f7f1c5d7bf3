package testutil

import (
	"fmt"
	"time"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/domain/model"
)

// UserBuilder provides a fluent interface for building directory users in tests.
type UserBuilder struct {
	u model.User
}

// NewUser creates a UserBuilder with a USER-role record keyed by id.
func NewUser(id string) *UserBuilder {
	return &UserBuilder{u: model.User{
		ID:        id,
		Email:     fmt.Sprintf("%s@example.com", id),
		Name:      "Test",
		Surname:   "User",
		Role:      domainauth.RoleUser,
		CreatedAt: TestTime(),
	}}
}

// WithEmail sets the email.
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.u.Email = email
	return b
}

// WithRole sets the role. The zero Role leaves the user without one.
func (b *UserBuilder) WithRole(r domainauth.Role) *UserBuilder {
	b.u.Role = r
	return b
}

// Verified marks the email as verified at the given time.
func (b *UserBuilder) Verified(at time.Time) *UserBuilder {
	b.u.EmailVerified = &at
	return b
}

// Build returns the user.
func (b *UserBuilder) Build() model.User { return b.u }

// UpsertRequest returns the builder's user as an upsert request.
func (b *UserBuilder) UpsertRequest() *model.UpsertUserRequest {
	return &model.UpsertUserRequest{
		ID:            b.u.ID,
		Email:         b.u.Email,
		Name:          b.u.Name,
		Surname:       b.u.Surname,
		Role:          b.u.Role,
		EmailVerified: b.u.EmailVerified,
	}
}
