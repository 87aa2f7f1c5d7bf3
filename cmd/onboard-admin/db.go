package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/target/onboard-admin/internal/bootstrap"
	"github.com/target/onboard-admin/internal/data"
	"github.com/target/onboard-admin/internal/devseed"
)

type migrateOptions struct {
	Timeout time.Duration
}

type dbResetOptions struct {
	Timeout     time.Duration
	Yes         bool
	SeedFile    string
	AllowRemote bool
}

type seedOptions struct {
	Timeout     time.Duration
	File        string
	AllowRemote bool
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runDBReset(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBResetFlags(args)
	if err != nil {
		return err
	}

	var seed devseed.File
	if opts.SeedFile != "" {
		if seed, err = devseed.LoadFile(opts.SeedFile); err != nil {
			return err
		}
	}

	pg := cmdCtx.Config.Postgres
	target := fmt.Sprintf("database %q on %s:%d", pg.Name, pg.Host, pg.Port)

	remote, err := guardRemoteHost(cmdCtx, opts.AllowRemote, "drop and recreate the public schema")
	if err != nil {
		return err
	}
	warning := ""
	if remote {
		warning = fmt.Sprintf("host %q is not local", pg.Host)
	}
	if confirmErr := confirmAction(cmdCtx, confirmRequest{
		yes:     opts.Yes,
		action:  "reset database schema",
		target:  target,
		warning: warning,
	}); confirmErr != nil {
		return confirmErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("dropping public schema", "database", pg.Name)
		if resetErr := cmdCtx.resetDatabase(ctx, db); resetErr != nil {
			return resetErr
		}

		cmdCtx.Logger.Info("re-running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}

		if opts.SeedFile != "" {
			cmdCtx.Logger.Info("seeding users after reset", "file", opts.SeedFile)
			if _, seedErr := devseed.Run(ctx, seed, devseed.Options{
				Writer: data.NewUserRepo(db),
				Logger: cmdCtx.Logger,
			}); seedErr != nil {
				return fmt.Errorf("seed users: %w", seedErr)
			}
		}

		cmdCtx.Logger.Info("database reset completed successfully")
		return nil
	})
}

func runSeedUsers(cmdCtx *commandContext, args []string) error {
	opts, err := parseSeedFlags(args)
	if err != nil {
		return err
	}
	seed, err := devseed.LoadFile(opts.File)
	if err != nil {
		return err
	}

	if _, guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote, "write directory users to the configured database"); guardErr != nil {
		return guardErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		n, seedErr := devseed.Run(ctx, seed, devseed.Options{
			Writer: data.NewUserRepo(db),
			Logger: cmdCtx.Logger,
		})
		if writeErr := writef(cmdCtx.out(), "seeded %d of %d users\n", n, len(seed.Users)); writeErr != nil {
			return errors.Join(seedErr, writeErr)
		}
		return seedErr
	})
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := newFlagSet("migrate")
	opts := migrateOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if err := requirePositiveTimeout(opts.Timeout); err != nil {
		return migrateOptions{}, err
	}
	return opts, nil
}

func parseDBResetFlags(args []string) (dbResetOptions, error) {
	fs := newFlagSet("db-reset")
	opts := dbResetOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for reset operations to complete")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	fs.StringVar(&opts.SeedFile, "seed-file", "", "YAML user seed file to load after reset")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")

	if err := fs.Parse(args); err != nil {
		return dbResetOptions{}, err
	}
	if err := requirePositiveTimeout(opts.Timeout); err != nil {
		return dbResetOptions{}, err
	}
	return opts, nil
}

func parseSeedFlags(args []string) (seedOptions, error) {
	fs := newFlagSet("seed-users")
	opts := seedOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait for seeding to complete")
	fs.StringVar(&opts.File, "file", "", "YAML user seed file (required)")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")

	if err := fs.Parse(args); err != nil {
		return seedOptions{}, err
	}
	if strings.TrimSpace(opts.File) == "" {
		return seedOptions{}, errors.New("--file is required")
	}
	if err := requirePositiveTimeout(opts.Timeout); err != nil {
		return seedOptions{}, err
	}
	return opts, nil
}

func guardRemoteHost(cmdCtx *commandContext, allow bool, action string) (bool, error) {
	host := cmdCtx.Config.Postgres.Host
	if !isLikelyRemoteHost(host) {
		return false, nil
	}
	if !allow {
		return true, fmt.Errorf(
			"refusing to run against potentially remote database host %q; re-run with --allow-remote if this is intentional",
			host,
		)
	}
	return true, requireRemoteHostConfirmation(cmdCtx, action, host)
}

func (cmdCtx *commandContext) resetDatabase(ctx context.Context, db *sql.DB) error {
	statements := []string{
		"DROP SCHEMA public CASCADE",
		"CREATE SCHEMA public",
		"GRANT ALL ON SCHEMA public TO public",
	}
	if user := strings.TrimSpace(cmdCtx.Config.Postgres.User); user != "" && !strings.EqualFold(user, "public") {
		statements = append(statements, "GRANT ALL ON SCHEMA public TO "+quoteIdentifier(user))
	}

	for _, stmt := range statements {
		cmdCtx.Logger.DebugContext(ctx, "executing reset statement", "sql", stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" || h == "localhost" || strings.HasSuffix(h, ".local") {
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}

func requireRemoteHostConfirmation(cmdCtx *commandContext, action, host string) error {
	if err := writef(
		os.Stderr,
		"\nWARNING: database host %q does not look like a local address.\nThis operation will %s.\n",
		host,
		action,
	); err != nil {
		return fmt.Errorf("print remote host warning: %w", err)
	}
	if err := writef(os.Stderr, "Type %q to continue or press enter to abort: ", host); err != nil {
		return fmt.Errorf("print remote host prompt: %w", err)
	}
	resp, err := bufio.NewReader(cmdCtx.in()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.New("aborted by user")
	}
	if strings.TrimSpace(resp) != host {
		if writeErr := writeln(os.Stderr, "\nRemote safeguard check failed; aborting."); writeErr != nil {
			return fmt.Errorf("print remote safeguard failure: %w", writeErr)
		}
		return errors.New("aborted by user")
	}
	return nil
}

type confirmRequest struct {
	yes     bool
	action  string
	target  string
	warning string
}

func confirmAction(cmdCtx *commandContext, req confirmRequest) error {
	if req.yes {
		return nil
	}
	out := cmdCtx.out()
	if req.warning != "" {
		if err := writef(out, "WARNING: %s\n", req.warning); err != nil {
			return fmt.Errorf("print confirmation warning: %w", err)
		}
	}
	if err := writef(out, "About to %s for %s.\n", req.action, req.target); err != nil {
		return fmt.Errorf("print confirmation message: %w", err)
	}
	if err := write(out, "Continue? [y/N]: "); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}

	resp, err := bufio.NewReader(cmdCtx.in()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.New("aborted by user")
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}
