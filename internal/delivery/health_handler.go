package delivery

import (
	"context"
	"net/http"
	"time"
)

type ModelInfo interface {
	ModelName() string
	IsHealthy(ctx context.Context) bool
}

type HealthHandler struct {
	model ModelInfo
}

func NewHealthHandler(model ModelInfo) *HealthHandler {
	return &HealthHandler{model: model}
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

// Health answers {"status":"health"}. With ?check=model the backend is
// probed too and an unreachable model yields 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "health", Model: h.model.ModelName()}

	if r.URL.Query().Get("check") == "model" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if !h.model.IsHealthy(ctx) {
			resp.Status = "unhealthy"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
