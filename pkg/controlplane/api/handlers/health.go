package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is implemented by the backing store.
type HealthChecker interface {
	Healthcheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	store    HealthChecker
	identity string
	started  time.Time
}

// NewHealthHandler creates a health handler. store may be nil, in which case
// readiness reports unhealthy.
func NewHealthHandler(store HealthChecker, identity string) *HealthHandler {
	return &HealthHandler{
		store:    store,
		identity: identity,
		started:  time.Now(),
	}
}

// Liveness reports that the process is serving.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.started)
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"name":       h.identity,
		"started_at": h.started.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness pings the backing store.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("store not configured"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Healthcheck(ctx); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]any{"store": "ok"}))
}
