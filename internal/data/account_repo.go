package data

import (
	"context"
	"database/sql"

	"github.com/target/onboard-admin/internal/domain/model"
	apperrors "github.com/target/onboard-admin/internal/errors"
)

const accountLinkQuery = `
	INSERT INTO accounts (user_id, provider, provider_account_id)
	VALUES ($1, $2, $3)
	ON CONFLICT (provider, provider_account_id) DO NOTHING`

// AccountRepo records which identity provider accounts belong to which directory users.
type AccountRepo struct {
	DB *sql.DB
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{DB: db}
}

// Link stores the provider account for a user. Linking an already-linked account is a no-op.
func (r *AccountRepo) Link(ctx context.Context, acct model.Account) error {
	if err := acct.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}
	if _, err := r.DB.ExecContext(ctx, accountLinkQuery, acct.UserID, acct.Provider, acct.ProviderAccountID); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}
