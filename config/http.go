package config

import (
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

const defaultHealthCheckTimeout = 2 * time.Second

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://onboard.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 30 * time.Second
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 30 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
	h.CookieDomain = sanitizeCookieDomain(h.CookieDomain)
}

// sanitizeCookieDomain drops a domain that is itself a public suffix ("com", "co.uk");
// browsers refuse such cookies, so the session cookie falls back to host-only.
func sanitizeCookieDomain(d string) string {
	d = strings.TrimSpace(d)
	host := strings.ToLower(strings.TrimPrefix(d, "."))
	if host == "" {
		return ""
	}
	if suffix, _ := publicsuffix.PublicSuffix(host); suffix == host {
		return ""
	}
	return d
}

// HealthConfig configures the liveness probe.
type HealthConfig struct {
	// Timeout bounds the database round-trip made by /healthz.
	Timeout time.Duration `env:"HEALTH_CHECK_TIMEOUT" envDefault:"2s"`
}

// Sanitize applies guardrails to health configuration values.
func (h *HealthConfig) Sanitize() {
	if h.Timeout <= 0 {
		h.Timeout = defaultHealthCheckTimeout
	}
}
