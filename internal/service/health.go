package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/onboard-admin/internal/ports"
)

var errNoPinger = errors.New("database not configured")

// DefaultHealthCheckTimeout bounds a single liveness probe.
const DefaultHealthCheckTimeout = 2 * time.Second

// Health status values reported by CheckHealth.
const (
	HealthStatusOK    = "ok"
	HealthStatusError = "error"
	HealthDBOK        = "ok"
	HealthDBDown      = "down"
)

// HealthStatus is the liveness report.
type HealthStatus struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Time   string `json:"time"`
}

// OK reports whether the probe succeeded.
func (h HealthStatus) OK() bool { return h.Status == HealthStatusOK }

// HealthServiceOptions groups dependencies for HealthService.
type HealthServiceOptions struct {
	DB      ports.Pinger
	Timeout time.Duration
	Now     func() time.Time
	Logger  *slog.Logger
}

// HealthService probes the directory's database with a trivial query.
type HealthService struct {
	db      ports.Pinger
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewHealthService constructs a new HealthService.
func NewHealthService(opts HealthServiceOptions) *HealthService {
	s := &HealthService{
		db:      opts.DB,
		timeout: opts.Timeout,
		now:     opts.Now,
		logger:  opts.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultHealthCheckTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// CheckHealth runs the probe. It never panics and never returns an error;
// any failure is reported in the returned status.
func (s *HealthService) CheckHealth(ctx context.Context) HealthStatus {
	if err := s.ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "health check failed", "error", err)
		return HealthStatus{Status: HealthStatusError, DB: HealthDBDown, Time: s.timestamp()}
	}
	return HealthStatus{Status: HealthStatusOK, DB: HealthDBOK, Time: s.timestamp()}
}

func (s *HealthService) ping(ctx context.Context) (err error) {
	if s.db == nil {
		return errNoPinger
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ping panic: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.Ping(ctx)
}

func (s *HealthService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
