package httpx

import (
	"context"
	"net/http"

	"github.com/target/onboard-admin/internal/service"
)

// HealthChecker reports service liveness.
type HealthChecker interface {
	CheckHealth(ctx context.Context) service.HealthStatus
}

// HealthHandlers serves the liveness endpoint.
type HealthHandlers struct {
	Svc HealthChecker
}

// Health writes the probe result: 200 when healthy, 500 otherwise.
// GET|HEAD /healthz.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	status := h.Svc.CheckHealth(r.Context())
	code := http.StatusOK
	if !status.OK() {
		code = http.StatusInternalServerError
	}
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		return
	}
	WriteJSON(w, code, status)
}
