package handlers

import (
	"context"
	"net/http"

	"github.com/bookstore/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user administration.
type UserService interface {
	List(ctx context.Context) ([]models.PublicUser, error)
	// Method GetByID retrieves a user. A missing user is models.ErrNotFound.
	GetByID(ctx context.Context, userID int) (*models.PublicUser, error)
	// Method Create validates and stores a user with the requested role, "user" when empty.
	//
	// Validation follows registration. A taken email or username is models.ConflictError.
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.PublicUser, error)
	// Method Update changes username, email and, when given, role of a user.
	Update(ctx context.Context, userID int, req *models.UpdateUserRequest) (*models.PublicUser, error)
	// Method Delete removes a user together with their cart.
	Delete(ctx context.Context, userID int) error
}

// AdminHandler handles HTTP requests for user administration
type AdminHandler struct {
	BaseHandler
	service UserService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc UserService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers the user administration routes behind requireAdmin
func (h *AdminHandler) RegisterRoutes(r chi.Router, requireAdmin ...func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Use(requireAdmin...)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PublicUser
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /users [get]
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}
	if users == nil {
		users = []models.PublicUser{}
	}

	h.respondJSON(w, http.StatusOK, users)
}

// GetByID handles GET /users/{id}
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.PublicUser
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /users/{id} [get]
func (h *AdminHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "user not found")
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// Create handles POST /users
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateUserRequest true "User data"
// @Success 201 {object} models.PublicUser
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /users [post]
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	user, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	h.respondJSON(w, http.StatusCreated, user)
}

// Update handles PUT /users/{id}
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.UpdateUserRequest true "User data"
// @Success 200 {object} models.PublicUser
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /users/{id} [put]
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	var req models.UpdateUserRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	user, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, r, err, "user not found")
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id}
// @Summary Delete a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /users/{id} [delete]
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, "user not found")
		return
	}

	h.respondMessage(w, http.StatusOK, "user deleted successfully")
}
