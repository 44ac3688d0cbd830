package handlers

import (
	"context"
	"net/http"

	"github.com/bookstore/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BookService is the interface that wraps methods for catalog business logic.
type BookService interface {
	// Method List retrieves every book ordered by sortBy and order.
	//
	// Empty parameters default to "id" and "asc". Values outside the whitelist are a models.ValidationError.
	List(ctx context.Context, sortBy, order string) ([]models.Book, error)
	// Method GetByID retrieves a book. A missing book is models.ErrNotFound.
	GetByID(ctx context.Context, id int) (*models.Book, error)
	Create(ctx context.Context, req *models.BookRequest) (*models.Book, error)
	Update(ctx context.Context, id int, req *models.BookRequest) (*models.Book, error)
	Delete(ctx context.Context, id int) error
}

// BookHandler handles HTTP requests for the catalog
type BookHandler struct {
	BaseHandler
	service BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(svc BookService, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers the catalog routes; writes sit behind requireAdmin
func (h *BookHandler) RegisterRoutes(r chi.Router, requireAdmin ...func(http.Handler) http.Handler) {
	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin...)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles GET /books
// @Summary List books
// @Tags books
// @Produce json
// @Param sort query string false "Sort column: id, title, author, price or stock (default id)"
// @Param order query string false "Sort order: asc or desc (default asc)"
// @Success 200 {array} models.Book
// @Failure 400 {object} models.ErrorsResponse
// @Failure 500 {object} models.MessageResponse
// @Router /books [get]
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context(), r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}
	if books == nil {
		books = []models.Book{}
	}

	h.respondJSON(w, http.StatusOK, books)
}

// GetByID handles GET /books/{id}
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} models.Book
// @Failure 400 {object} models.ErrorsResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /books/{id} [get]
func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	book, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "book not found")
		return
	}

	h.respondJSON(w, http.StatusOK, book)
}

// Create handles POST /books
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BookRequest true "Book data"
// @Success 201 {object} models.Book
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /books [post]
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.BookRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	book, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	h.respondJSON(w, http.StatusCreated, book)
}

// Update handles PUT /books/{id}
// @Summary Update a book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body models.BookRequest true "Book data"
// @Success 200 {object} models.Book
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /books/{id} [put]
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	var req models.BookRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	book, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, r, err, "book not found")
		return
	}

	h.respondJSON(w, http.StatusOK, book)
}

// Delete handles DELETE /books/{id}
// @Summary Delete a book
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, "book not found")
		return
	}

	h.respondMessage(w, http.StatusOK, "book deleted successfully")
}
