package handlers

import (
	"net/http"

	"github.com/bookstore/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StatusHandler serves the service banner
type StatusHandler struct {
	BaseHandler
	version string
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(version string, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		version:     version,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers the banner route
func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Status)
}

// Status handles GET /
// @Summary Service status
// @Tags status
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Router / [get]
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, models.StatusResponse{
		Status:  "ok",
		Version: h.version,
		Docs:    "/swagger/index.html",
	})
}
