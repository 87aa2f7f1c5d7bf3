// Package devseed loads directory users from a YAML file into the users table.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/domain/model"
	apperrors "github.com/target/onboard-admin/internal/errors"
)

// UserWriter persists a single directory user.
type UserWriter interface {
	Upsert(ctx context.Context, req *model.UpsertUserRequest) (*model.User, error)
}

// User is one entry of the seed file.
type User struct {
	ID            string `yaml:"id"`
	Email         string `yaml:"email"`
	Name          string `yaml:"name"`
	Surname       string `yaml:"surname"`
	Role          string `yaml:"role"`
	EmailVerified bool   `yaml:"email_verified"`
}

// File is the top-level seed document.
//
//	users:
//	  - email: ada@example.com
//	    name: Ada
//	    role: ADMIN
type File struct {
	Users []User `yaml:"users"`
}

// Load decodes a seed document. Unknown keys are rejected.
func Load(r io.Reader) (File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}
	return f, nil
}

// LoadFile opens and decodes the seed document at path.
func LoadFile(path string) (File, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return File{}, fmt.Errorf("open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Options configures Run.
type Options struct {
	Writer UserWriter
	Logger *slog.Logger
	Now    func() time.Time
}

// Run upserts every user in f. A bad entry is logged and counted; the rest are still written.
func Run(ctx context.Context, f File, opts Options) (int, error) {
	if opts.Writer == nil {
		return 0, errors.New("devseed: user writer is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	written, failures := 0, 0
	for i, u := range f.Users {
		req, err := u.request(now)
		if err == nil {
			_, err = opts.Writer.Upsert(ctx, req)
		}
		if err != nil {
			if opts.Logger != nil {
				opts.Logger.ErrorContext(ctx, "failed to seed user",
					"index", i,
					"email", u.Email,
					"code", apperrors.GetCode(err),
					"field", apperrors.GetField(err),
					"error", err,
				)
			}
			failures++
			continue
		}
		written++
		if opts.Logger != nil {
			opts.Logger.InfoContext(ctx, "seeded user", "email", req.Email, "role", req.Role)
		}
	}

	if failures > 0 {
		return written, fmt.Errorf("%d seed errors; check logs", failures)
	}
	return written, nil
}

func (u User) request(now func() time.Time) (*model.UpsertUserRequest, error) {
	req := &model.UpsertUserRequest{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Surname: u.Surname,
	}
	if strings.TrimSpace(u.Role) != "" {
		role, err := domainauth.ParseRole(u.Role)
		if err != nil {
			return nil, err
		}
		req.Role = role
	}
	if u.EmailVerified {
		t := now().UTC()
		req.EmailVerified = &t
	}
	return req, nil
}
