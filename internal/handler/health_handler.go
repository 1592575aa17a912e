package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ispbot/billnotify/internal/service"
)

type HealthHandler struct {
	healthSvc service.HealthService
}

func NewHealthHandler(healthSvc service.HealthService) *HealthHandler {
	return &HealthHandler{healthSvc: healthSvc}
}

// Liveness reports the process is up without touching dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Readiness checks critical dependencies before reporting ready.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	data := h.healthSvc.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if status, ok := data["db"]; ok && status == "ok" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(data)
}
