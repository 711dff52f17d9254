package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fiine-pro/support-chat/internal/store"
)

// HealthHandler reports database readiness. Liveness is served separately by
// the router heartbeat.
type HealthHandler struct {
	repo store.Repository
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(repo store.Repository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

// RegisterRoutes registers health routes.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health/db", h.Database)
}

// Database pings the underlying database.
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(r.Context()); err != nil {
		Error(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
