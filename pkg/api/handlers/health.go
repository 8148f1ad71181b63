package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mnemo/mnemo/pkg/api/response"
)

// ReadinessProbe reports whether the service can serve traffic.
type ReadinessProbe func(ctx context.Context) error

// StatusFunc returns a detailed status snapshot.
type StatusFunc func(ctx context.Context) map[string]any

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	started time.Time
	probe   ReadinessProbe
	status  StatusFunc
}

// NewHealthHandler creates a new health handler. probe and status may
// be nil; the handler then reports ready unconditionally.
func NewHealthHandler(probe ReadinessProbe, status StatusFunc) *HealthHandler {
	return &HealthHandler{
		started: time.Now(),
		probe:   probe,
		status:  status,
	}
}

// Health handles the /health endpoint (liveness probe).
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready handles the /ready endpoint (readiness probe).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.probe != nil {
		if err := h.probe(r.Context()); err != nil {
			response.JSON(w, http.StatusServiceUnavailable, map[string]any{
				"ready": false,
				"error": err.Error(),
			})
			return
		}
	}
	response.JSON(w, http.StatusOK, map[string]bool{
		"ready": true,
	})
}

// Status handles the /status endpoint (detailed status).
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	}
	if h.status != nil {
		for k, v := range h.status(r.Context()) {
			status[k] = v
		}
	}
	response.JSON(w, http.StatusOK, status)
}
