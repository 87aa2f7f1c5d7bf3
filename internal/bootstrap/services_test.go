package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/onboard-admin/config"
	redisadapter "github.com/target/onboard-admin/internal/adapters/redis"
	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/service"
)

var userCols = []string{"id", "email", "name", "surname", "role", "email_verified", "created_at"}

func testAppConfig(source config.RoleSource) *config.AppConfig {
	cfg := &config.AppConfig{
		Auth:   devAuthConfig(),
		Redis:  config.RedisConfig{SessionPrefix: "session:"},
		Health: config.HealthConfig{Timeout: time.Second},
	}
	cfg.Auth.RoleSource = source
	cfg.Auth.SignInPath = "/sso/start"
	cfg.Auth.RestrictedPath = "/no-access"
	return cfg
}

func TestNewServices_WiresGateAndAuth(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, client := newMiniRedis(t)

	svcs := NewServices(context.Background(), &ServiceDeps{
		Config:      testAppConfig(config.RoleSourceDirectory),
		DB:          db,
		RedisClient: client,
		Logger:      discardLogger(),
	})

	require.NotNil(t, svcs.Auth)
	require.NotNil(t, svcs.Directory)
	require.NotNil(t, svcs.Resolver)
	assert.Equal(t, "/sso/start", svcs.Gate.SignInPath())
	assert.Equal(t, "/no-access", svcs.Gate.RestrictedPath())
}

func TestNewServices_HealthUsesDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svcs := NewServices(context.Background(), &ServiceDeps{
		Config: testAppConfig(config.RoleSourceDirectory),
		DB:     db,
		Logger: discardLogger(),
	})

	mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1`).WillReturnError(errors.New("connection refused"))

	assert.Equal(t, service.HealthStatusOK, svcs.Health.CheckHealth(context.Background()).Status)
	down := svcs.Health.CheckHealth(context.Background())
	assert.Equal(t, service.HealthStatusError, down.Status)
	assert.Equal(t, service.HealthDBDown, down.DB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewServices_WithoutDatabaseReportsDown(t *testing.T) {
	svcs := NewServices(context.Background(), &ServiceDeps{
		Config: testAppConfig(config.RoleSourceDirectory),
		Logger: discardLogger(),
	})

	assert.Nil(t, svcs.Auth)
	assert.False(t, svcs.Health.CheckHealth(context.Background()).OK())

	p, ok := svcs.Resolver.GetCurrentUser(context.Background(), "anything")
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestNewServices_RoleSource(t *testing.T) {
	tests := []struct {
		name     string
		source   config.RoleSource
		expect   func(sqlmock.Sqlmock)
		wantRole domainauth.Role
	}{
		{
			name:   "directory role replaces session role",
			source: config.RoleSourceDirectory,
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs("u-1").
					WillReturnRows(sqlmock.NewRows(userCols).
						AddRow("u-1", "ada@example.com", "Ada", "Lovelace", "USER", nil, time.Now()))
			},
			wantRole: domainauth.RoleUser,
		},
		{
			name:   "directory fault strips the role",
			source: config.RoleSourceDirectory,
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs("u-1").
					WillReturnError(errors.New("connection reset"))
			},
			wantRole: "",
		},
		{
			name:     "session role is trusted",
			source:   config.RoleSourceSession,
			expect:   func(sqlmock.Sqlmock) {},
			wantRole: domainauth.RoleAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			_, client := newMiniRedis(t)
			ctx := context.Background()

			store := redisadapter.NewSessionStoreWithOptions(redisadapter.SessionStoreOptions{Client: client})
			require.NoError(t, store.Save(ctx, domainauth.Session{
				ID:        "sess-1",
				UserID:    "u-1",
				Email:     "ada@example.com",
				Role:      domainauth.RoleAdmin,
				ExpiresAt: time.Now().Add(time.Hour),
			}))

			svcs := NewServices(ctx, &ServiceDeps{
				Config:      testAppConfig(tt.source),
				DB:          db,
				RedisClient: client,
				Logger:      discardLogger(),
			})
			tt.expect(mock)

			p, ok := svcs.Resolver.GetCurrentUser(ctx, "sess-1")
			require.True(t, ok)
			assert.Equal(t, "u-1", p.ID)
			assert.Equal(t, tt.wantRole, p.Role)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
