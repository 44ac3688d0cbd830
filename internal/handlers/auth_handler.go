package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/bookstore/backend/internal/auth"
	"github.com/bookstore/backend/internal/middleware"
	"github.com/bookstore/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for registration, login and profile business logic.
type AuthService interface {
	// Method Register validates and stores a new user with the "user" role and issues a token for it.
	//
	// Every violated rule is reported at once as models.ValidationError.
	// A taken email or username is reported as models.ConflictError naming the taken fields.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error)
	// Method Login checks the credentials and issues a token.
	//
	// A missing field is models.ErrMissingCredentials. An unknown email and a wrong password
	// are both models.ErrInvalidCredentials.
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error)
	// Method VerifySession returns the stored projection of the user a verified token names.
	//
	// A user deleted after the token was issued is models.ErrNotFound.
	VerifySession(ctx context.Context, userID int) (*models.PublicUser, error)
	// Method GetProfile returns the stored projection of the user.
	GetProfile(ctx context.Context, userID int) (*models.PublicUser, error)
	// Method UpdateProfile changes username and email of the user and issues a token with the new claims.
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.AuthResult, error)
}

// AuthHandler handles HTTP requests for sessions and the caller's profile
type AuthHandler struct {
	BaseHandler
	service  AuthService
	verifier middleware.TokenVerifier
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, verifier middleware.TokenVerifier, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:     svc,
		verifier:    verifier,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all auth handler routes
//
// requireAuth guards the profile routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/verify-token", h.VerifyToken)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/user/profile", h.GetProfile)
			r.Put("/user/profile", h.UpdateProfile)
		})
	})
}

// Register handles POST /api/register
// @Summary Register a new user
// @Description Create an account with the "user" role and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.RegisterResponse
// @Failure 400 {object} models.ErrorsResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err, "user not found")
		return
	}

	h.respondJSON(w, http.StatusCreated, models.RegisterResponse{
		Message: "user registered successfully",
		Token:   result.Token,
		User:    result.User,
	})
}

// Login handles POST /api/login
// @Summary Log in
// @Description Exchange email and password for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondMessage(w, http.StatusBadRequest, models.ErrMissingCredentials.Error())
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	h.respondJSON(w, http.StatusOK, models.LoginResponse{
		Token:     result.Token,
		User:      result.User,
		ExpiresIn: result.ExpiresIn,
	})
}

// VerifyToken handles GET /api/verify-token
// @Summary Verify a session token
// @Description Check the bearer token and return the stored user it names
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.VerifyTokenResponse
// @Failure 401 {object} models.VerifyTokenResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/verify-token [get]
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		h.respondJSON(w, http.StatusUnauthorized, models.VerifyTokenResponse{Valid: false})
		return
	}

	claims, err := h.verifier.Verify(token)
	if err != nil {
		h.logger.Debug("token rejected", zap.Error(err))
		h.respondJSON(w, http.StatusUnauthorized, models.VerifyTokenResponse{Valid: false})
		return
	}

	user, err := h.service.VerifySession(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.respondJSON(w, http.StatusUnauthorized, models.VerifyTokenResponse{Valid: false})
			return
		}
		h.respondServiceError(w, r, err, "")
		return
	}

	h.respondJSON(w, http.StatusOK, models.VerifyTokenResponse{Valid: true, User: user})
}

// GetProfile handles GET /api/user/profile
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.PublicUser
// @Failure 401 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/user/profile [get]
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.service.GetProfile(r.Context(), caller.UserID)
	if err != nil {
		h.respondServiceError(w, r, err, "user not found")
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/user/profile
// @Summary Update own profile
// @Description Change username and email; a new token with the updated claims is returned
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateProfileRequest true "Profile data"
// @Success 200 {object} models.RegisterResponse
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/user/profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	result, err := h.service.UpdateProfile(r.Context(), caller.UserID, &req)
	if err != nil {
		h.respondServiceError(w, r, err, "user not found")
		return
	}

	h.respondJSON(w, http.StatusOK, models.RegisterResponse{
		Message: "profile updated successfully",
		Token:   result.Token,
		User:    result.User,
	})
}
