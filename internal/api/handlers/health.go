package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

// Pinger is implemented by session backends with an external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	sessions Pinger // nil when the in-memory store is in use
}

func NewHealthHandler(sessions Pinger) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.sessions != nil {
		if err := h.sessions.Ping(r.Context()); err != nil {
			checks["sessions"] = "unhealthy: " + err.Error()
		} else {
			checks["sessions"] = "ok"
		}
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
