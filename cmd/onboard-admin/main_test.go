package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/onboard-admin/config"
	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/domain/model"
)

var userCols = []string{"id", "email", "name", "surname", "role", "email_verified", "created_at"}

func newTestContext(t *testing.T, db *sql.DB) (*commandContext, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.AppConfig{
			Postgres: config.DBConfig{Host: "localhost", Name: "onboard"},
			Health:   config.HealthConfig{Timeout: time.Second},
		},
		Out: &out,
		In:  strings.NewReader(""),
		openDB: func(config.DBConfig, *slog.Logger) (*sql.DB, error) {
			if db == nil {
				return nil, errors.New("connection refused")
			}
			return db, nil
		},
	}, &out
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestPrintUsageListsCommandsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	assert.Contains(t, out, "Usage: onboard-admin <command> [flags]")
	assert.Less(t, strings.Index(out, "db-reset"), strings.Index(out, "health"))
	assert.Less(t, strings.Index(out, "lookup-user"), strings.Index(out, "seed-users"))
}

func TestParseLookupFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    lookupOptions
		wantErr bool
	}{
		{name: "email", args: []string{"-email", " ada@example.com "}, want: lookupOptions{Email: "ada@example.com", Timeout: defaultCommandTimeout}},
		{name: "id with json", args: []string{"-id", "u-1", "-json"}, want: lookupOptions{ID: "u-1", JSON: true, Timeout: defaultCommandTimeout}},
		{name: "neither", args: nil, wantErr: true},
		{name: "both", args: []string{"-id", "u-1", "-email", "a@example.com"}, wantErr: true},
		{name: "bad timeout", args: []string{"-id", "u-1", "-timeout", "0s"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLookupFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintLookup(t *testing.T) {
	verified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	user := &model.User{
		ID:            "u-1",
		Email:         "ada@example.com",
		Name:          "Ada",
		Surname:       "Lovelace",
		Role:          domainauth.RoleAdmin,
		EmailVerified: &verified,
	}

	t.Run("found", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printLookup(&buf, model.Found(user), false))
		out := buf.String()
		assert.Contains(t, out, "found")
		assert.Contains(t, out, "Ada Lovelace")
		assert.Contains(t, out, "ADMIN")
		assert.Contains(t, out, "2026-01-02T03:04:05Z")
	})

	t.Run("not found", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printLookup(&buf, model.NotFound(), false))
		assert.Equal(t, "status: not_found\n", buf.String())
	})

	t.Run("fault as json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printLookup(&buf, model.Fault(errors.New("timeout")), true))
		var got lookupJSON
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "fault", got.Status)
		assert.Equal(t, "timeout", got.Error)
		assert.Nil(t, got.User)
	})
}

func TestRunLookupUser(t *testing.T) {
	t.Run("found by email", func(t *testing.T) {
		db, mock := newMock(t)
		cmdCtx, out := newTestContext(t, db)
		mock.ExpectQuery(`FROM users WHERE lower\(email\) = \$1`).
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u-1", "ada@example.com", "Ada", "Lovelace", "ADMIN", nil, time.Now()))
		mock.ExpectClose()

		require.NoError(t, runLookupUser(cmdCtx, []string{"-email", "Ada@Example.com"}))
		assert.Contains(t, out.String(), "u-1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing id is not an error", func(t *testing.T) {
		db, mock := newMock(t)
		cmdCtx, out := newTestContext(t, db)
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs("u-404").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectClose()

		require.NoError(t, runLookupUser(cmdCtx, []string{"-id", "u-404"}))
		assert.Equal(t, "status: not_found\n", out.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fault is an error", func(t *testing.T) {
		db, mock := newMock(t)
		cmdCtx, out := newTestContext(t, db)
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs("u-1").
			WillReturnError(errors.New("connection reset"))
		mock.ExpectClose()

		err := runLookupUser(cmdCtx, []string{"-id", "u-1"})
		require.ErrorIs(t, err, errLookupFault)
		assert.Contains(t, out.String(), "status: fault")
	})

	t.Run("connect failure", func(t *testing.T) {
		cmdCtx, _ := newTestContext(t, nil)
		err := runLookupUser(cmdCtx, []string{"-id", "u-1"})
		assert.ErrorContains(t, err, "connect db")
	})
}

func TestRunHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		db, mock := newMock(t)
		cmdCtx, out := newTestContext(t, db)
		mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
		mock.ExpectClose()

		require.NoError(t, runHealth(cmdCtx, nil))
		assert.Contains(t, out.String(), `"status":"ok"`)
	})

	t.Run("down", func(t *testing.T) {
		db, mock := newMock(t)
		cmdCtx, out := newTestContext(t, db)
		mock.ExpectQuery(`SELECT 1`).WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		require.Error(t, runHealth(cmdCtx, []string{"-timeout", "500ms"}))
		assert.Contains(t, out.String(), `"db":"down"`)
	})
}

func TestRunSeedUsers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users:\n  - email: Ada@Example.com\n    name: Ada\n    role: admin\n"), 0o600))

	db, mock := newMock(t)
	cmdCtx, out := newTestContext(t, db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "ada@example.com", "Ada", "", "ADMIN", nil, time.Now()))
	mock.ExpectCommit()
	mock.ExpectClose()

	require.NoError(t, runSeedUsers(cmdCtx, []string{"-file", path}))
	assert.Equal(t, "seeded 1 of 1 users\n", out.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunSeedUsersRequiresFile(t *testing.T) {
	cmdCtx, _ := newTestContext(t, nil)
	assert.ErrorContains(t, runSeedUsers(cmdCtx, nil), "--file is required")
}

func TestGuardRemoteHost(t *testing.T) {
	cmdCtx, _ := newTestContext(t, nil)

	remote, err := guardRemoteHost(cmdCtx, false, "test")
	require.NoError(t, err)
	assert.False(t, remote)

	cmdCtx.Config.Postgres.Host = "db.prod.example.com"
	remote, err = guardRemoteHost(cmdCtx, false, "test")
	assert.True(t, remote)
	assert.ErrorContains(t, err, "--allow-remote")

	cmdCtx.In = strings.NewReader("db.prod.example.com\n")
	_, err = guardRemoteHost(cmdCtx, true, "test")
	assert.NoError(t, err)
}

func TestIsLikelyRemoteHost(t *testing.T) {
	tests := map[string]bool{
		"":               false,
		"localhost":      false,
		"127.0.0.1":      false,
		"::1":            false,
		"db.local":       false,
		"10.0.0.5":       true,
		"db.example.com": true,
	}
	for host, want := range tests {
		assert.Equal(t, want, isLikelyRemoteHost(host), host)
	}
}

func TestConfirmAction(t *testing.T) {
	cmdCtx, out := newTestContext(t, nil)
	req := confirmRequest{action: "reset database schema", target: `database "onboard"`}

	cmdCtx.In = strings.NewReader("yes\n")
	require.NoError(t, confirmAction(cmdCtx, req))
	assert.Contains(t, out.String(), `About to reset database schema for database "onboard".`)

	cmdCtx.In = strings.NewReader("n\n")
	assert.Error(t, confirmAction(cmdCtx, req))

	cmdCtx.In = strings.NewReader("")
	assert.Error(t, confirmAction(cmdCtx, req))

	req.yes = true
	assert.NoError(t, confirmAction(cmdCtx, req))
}

func TestResetDatabaseGrantsConfiguredUser(t *testing.T) {
	db, mock := newMock(t)
	defer db.Close()
	cmdCtx, _ := newTestContext(t, db)
	cmdCtx.Config.Postgres.User = `on"board`

	mock.ExpectExec(regexp.QuoteMeta("DROP SCHEMA public CASCADE")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE SCHEMA public")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("GRANT ALL ON SCHEMA public TO public")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`GRANT ALL ON SCHEMA public TO "on""board"`)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, cmdCtx.resetDatabase(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
