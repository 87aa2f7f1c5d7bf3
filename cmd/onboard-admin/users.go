package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/onboard-admin/internal/data"
	"github.com/target/onboard-admin/internal/domain/model"
	"github.com/target/onboard-admin/internal/service"
)

type lookupOptions struct {
	Email   string
	ID      string
	JSON    bool
	Timeout time.Duration
}

type healthOptions struct {
	Timeout time.Duration
}

// errLookupFault is returned when the directory could not answer; a miss is not an error.
var errLookupFault = errors.New("user directory lookup failed")

func runLookupUser(cmdCtx *commandContext, args []string) error {
	opts, err := parseLookupFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		dir := service.NewUserDirectory(service.UserDirectoryOptions{
			Store:  data.NewUserRepo(db),
			Logger: cmdCtx.Logger,
		})

		var res model.UserLookup
		if opts.ID != "" {
			res = dir.LookupByID(ctx, opts.ID)
		} else {
			res = dir.LookupByEmail(ctx, opts.Email)
		}

		if printErr := printLookup(cmdCtx.out(), res, opts.JSON); printErr != nil {
			return printErr
		}
		if res.Status == model.LookupFault {
			return fmt.Errorf("%w: %w", errLookupFault, res.Err)
		}
		return nil
	})
}

type lookupJSON struct {
	Status string      `json:"status"`
	User   *model.User `json:"user,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func printLookup(w io.Writer, res model.UserLookup, asJSON bool) error {
	if asJSON {
		out := lookupJSON{Status: res.Status.String(), User: res.User}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	switch res.Status {
	case model.LookupFound:
		return printUser(w, res.User)
	case model.LookupFault:
		return writef(w, "status: %s (%v)\n", res.Status, res.Err)
	default:
		return writef(w, "status: %s\n", res.Status)
	}
}

func printUser(w io.Writer, u *model.User) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	role := string(u.Role)
	if role == "" {
		role = "-"
	}
	verified := "-"
	if u.EmailVerified != nil {
		verified = u.EmailVerified.UTC().Format(time.RFC3339)
	}
	rows := [][2]string{
		{"status", model.LookupFound.String()},
		{"id", u.ID},
		{"email", u.Email},
		{"name", strings.TrimSpace(u.Name + " " + u.Surname)},
		{"role", role},
		{"email_verified", verified},
		{"created_at", u.CreatedAt.UTC().Format(time.RFC3339)},
	}
	for _, row := range rows {
		if err := writef(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("write user row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush user table: %w", err)
	}
	return nil
}

func runHealth(cmdCtx *commandContext, args []string) error {
	opts, err := parseHealthFlags(args)
	if err != nil {
		return err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = cmdCtx.Config.Health.Timeout
	}

	// Connection setup gets its own budget; the probe itself is bounded by opts.Timeout.
	return withDatabase(cmdCtx, defaultCommandTimeout, func(ctx context.Context, db *sql.DB) error {
		status := service.NewHealthService(service.HealthServiceOptions{
			DB:      data.NewUserRepo(db),
			Timeout: opts.Timeout,
			Logger:  cmdCtx.Logger,
		}).CheckHealth(ctx)

		if encErr := json.NewEncoder(cmdCtx.out()).Encode(status); encErr != nil {
			return fmt.Errorf("write health status: %w", encErr)
		}
		if !status.OK() {
			return errors.New("health check failed")
		}
		return nil
	})
}

func parseLookupFlags(args []string) (lookupOptions, error) {
	fs := newFlagSet("lookup-user")
	opts := lookupOptions{}
	fs.StringVar(&opts.Email, "email", "", "Email address to look up")
	fs.StringVar(&opts.ID, "id", "", "User id to look up")
	fs.BoolVar(&opts.JSON, "json", false, "Print the result as JSON")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait for the lookup")

	if err := fs.Parse(args); err != nil {
		return lookupOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	opts.ID = strings.TrimSpace(opts.ID)
	if (opts.Email == "") == (opts.ID == "") {
		return lookupOptions{}, errors.New("exactly one of --email or --id is required")
	}
	if err := requirePositiveTimeout(opts.Timeout); err != nil {
		return lookupOptions{}, err
	}
	return opts, nil
}

func parseHealthFlags(args []string) (healthOptions, error) {
	fs := newFlagSet("health")
	opts := healthOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", 0, "Probe timeout (defaults to HEALTH_CHECK_TIMEOUT)")

	if err := fs.Parse(args); err != nil {
		return healthOptions{}, err
	}
	return opts, nil
}
