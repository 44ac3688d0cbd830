package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/bookstore/backend/internal/middleware"
	"github.com/bookstore/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgInternalError = "internal server error"

// BaseHandler holds the response helpers shared by every handler
type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondMessage sends a {"message": ...} response
func (h *BaseHandler) respondMessage(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.MessageResponse{Message: message})
}

// respondErrors sends a {"errors": [...]} response
func (h *BaseHandler) respondErrors(w http.ResponseWriter, status int, errs []string) {
	h.respondJSON(w, status, models.ErrorsResponse{Errors: errs})
}

// respondServiceError maps a service error onto its status code and body
//
// notFound is the message used for models.ErrNotFound. Unexpected errors are
// logged and answered with a generic 500.
func (h *BaseHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var validation *models.ValidationError
	var conflict *models.ConflictError

	switch {
	case errors.As(err, &validation):
		h.respondErrors(w, http.StatusBadRequest, validation.Errors)
	case errors.As(err, &conflict):
		h.respondErrors(w, http.StatusBadRequest, conflict.Messages())
	case errors.Is(err, models.ErrMissingCredentials):
		h.respondMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		h.respondMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbidden):
		h.respondMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, models.ErrNotFound):
		h.respondMessage(w, http.StatusNotFound, notFound)
	default:
		h.logger.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		h.respondMessage(w, http.StatusInternalServerError, msgInternalError)
	}
}

// decodeJSON reads the request body into dst; an empty body leaves dst untouched when allowEmpty is set
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return models.NewValidationError([]string{"invalid request body"})
	}
	return nil
}

// pathID parses a positive integer URL parameter
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, models.NewValidationError([]string{fmt.Sprintf("%s must be a positive integer", name)})
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter, 0 when absent
func queryID(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError([]string{fmt.Sprintf("%s must be a positive integer", name)})
	}
	return id, nil
}

// callerFrom builds the acting identity from the verified claims
func callerFrom(r *http.Request) (models.Caller, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		return models.Caller{}, false
	}
	return models.Caller{UserID: claims.UserID, IsAdmin: claims.IsAdmin()}, true
}
