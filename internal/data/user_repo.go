package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/target/onboard-admin/internal/data/pgxutil"
	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/domain/model"
	apperrors "github.com/target/onboard-admin/internal/errors"
)

const userColumns = `id, email, name, surname, role, email_verified, created_at`

const (
	userGetByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	userGetByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = $1`
	userUpsertQuery     = `
		INSERT INTO users (id, email, name, surname, role, email_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			surname = EXCLUDED.surname,
			role = EXCLUDED.role,
			email_verified = COALESCE(EXCLUDED.email_verified, users.email_verified)
		RETURNING ` + userColumns
)

// UserRepo provides read access to the users table plus the upsert used by operator tooling.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// Ping runs a trivial query against the database.
func (r *UserRepo) Ping(ctx context.Context) error {
	var one int
	if err := r.DB.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// FindUserByID returns the user with the given id.
// A missing row yields an error satisfying errors.IsNotFound.
func (r *UserRepo) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByIDQuery, id)
}

// FindUserByEmail returns the user whose email matches case-insensitively.
func (r *UserRepo) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByEmailQuery, model.NormalizeEmail(email))
}

// Upsert inserts a user or updates the mutable columns of the existing row with the same email.
func (r *UserRepo) Upsert(ctx context.Context, req *model.UpsertUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("upsert user request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	var out *model.User
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			row := tx.QueryRowContext(ctx, userUpsertQuery,
				id,
				req.Email,
				req.Name,
				req.Surname,
				nullableRole(req.Role),
				req.EmailVerified,
				r.timeProvider.Now().UTC(),
			)
			u, scanErr := scanUser(row)
			if scanErr != nil {
				return scanErr
			}
			out = u
			return nil
		},
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

func (r *UserRepo) getByQuery(ctx context.Context, query, arg string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u        model.User
		role     sql.NullString
		verified sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Surname, &role, &verified, &u.CreatedAt); err != nil {
		return nil, err
	}
	// Values outside the closed role set are treated as absent.
	if role.Valid {
		u.Role = domainauth.RoleOrAbsent(strings.TrimSpace(role.String))
	}
	if verified.Valid {
		t := verified.Time
		u.EmailVerified = &t
	}
	return &u, nil
}

func nullableRole(r domainauth.Role) any {
	if r == "" {
		return nil
	}
	return string(r)
}

