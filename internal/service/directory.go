package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/target/onboard-admin/internal/domain/model"
	apperrors "github.com/target/onboard-admin/internal/errors"
	"github.com/target/onboard-admin/internal/ports"
)

// UserDirectoryOptions groups dependencies for UserDirectory.
type UserDirectoryOptions struct {
	Store  ports.UserStore
	Logger *slog.Logger
}

// UserDirectory is the read-only lookup surface over the user store.
// It never returns errors to callers: the nil-returning methods collapse every
// fault to absence, and the Lookup* methods report it as a tagged value.
type UserDirectory struct {
	store  ports.UserStore
	logger *slog.Logger
}

var _ ports.UserLookup = (*UserDirectory)(nil)

// NewUserDirectory constructs a new UserDirectory.
func NewUserDirectory(opts UserDirectoryOptions) *UserDirectory {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UserDirectory{
		store:  opts.Store,
		logger: logger.With("component", "user_directory"),
	}
}

// GetUserByEmail returns the public profile for email, or nil when the user
// does not exist or the directory cannot answer.
func (d *UserDirectory) GetUserByEmail(ctx context.Context, email string) *model.UserProfile {
	res := d.LookupByEmail(ctx, email)
	if res.Status != model.LookupFound {
		return nil
	}
	p := res.User.Profile()
	return &p
}

// GetUserByID returns the full user record for id, or nil when the user does
// not exist or the directory cannot answer.
func (d *UserDirectory) GetUserByID(ctx context.Context, id string) *model.User {
	res := d.LookupByID(ctx, id)
	if res.Status != model.LookupFound {
		return nil
	}
	return res.User
}

// LookupByEmail looks a user up by normalized email.
func (d *UserDirectory) LookupByEmail(ctx context.Context, email string) model.UserLookup {
	key := model.NormalizeEmail(email)
	if key == "" {
		return model.NotFound()
	}
	return d.lookup(ctx, "email", key, d.store.FindUserByEmail)
}

// LookupByID looks a user up by id.
func (d *UserDirectory) LookupByID(ctx context.Context, id string) model.UserLookup {
	key := strings.TrimSpace(id)
	if key == "" {
		return model.NotFound()
	}
	return d.lookup(ctx, "id", key, d.store.FindUserByID)
}

func (d *UserDirectory) lookup(
	ctx context.Context,
	by, key string,
	find func(context.Context, string) (*model.User, error),
) (res model.UserLookup) {
	if d.store == nil {
		return model.Fault(apperrors.Internal("user store not configured"))
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("user store panic: %v", r)
			d.logger.ErrorContext(ctx, "directory lookup panicked", "by", by, "error", err)
			res = model.Fault(err)
		}
	}()

	u, err := find(ctx, key)
	switch {
	case err == nil && u != nil:
		return model.Found(u)
	case err == nil, apperrors.IsNotFound(err):
		return model.NotFound()
	default:
		d.logger.WarnContext(ctx, "directory lookup failed", "by", by, "code", apperrors.GetCode(err), "error", err)
		return model.Fault(err)
	}
}
