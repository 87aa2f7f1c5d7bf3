package ports

import (
	"context"

	"github.com/target/onboard-admin/internal/domain/model"
)

// Pinger runs a trivial round-trip against a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UserStore is the read side of the user directory.
// Implementations return an error satisfying errors.IsNotFound for a definite miss.
type UserStore interface {
	Pinger
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUserByID(ctx context.Context, id string) (*model.User, error)
}

// UserLookup is the tagged lookup surface consumed by session resolution.
type UserLookup interface {
	LookupByID(ctx context.Context, id string) model.UserLookup
	LookupByEmail(ctx context.Context, email string) model.UserLookup
}
