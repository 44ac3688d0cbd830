package handlers

import (
	"context"
	"net/http"

	"github.com/bookstore/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartService is the interface that wraps methods for cart business logic.
//
// Every method acts on behalf of a caller. A caller may name another user's cart only
// when it is an admin, otherwise models.ErrForbidden is returned.
type CartService interface {
	// Method ListCarts retrieves the carts of the user, the caller when userID is 0.
	ListCarts(ctx context.Context, caller models.Caller, userID int) ([]models.Cart, error)
	// Method CreateCart returns the cart of the user, creating it on first use.
	CreateCart(ctx context.Context, caller models.Caller, userID int) (*models.Cart, error)
	// Method AddToCart adds quantity of a book to a cart in one transaction.
	//
	// Adding a book already in the cart increments its quantity. An unknown book or cart is models.ErrNotFound.
	AddToCart(ctx context.Context, caller models.Caller, req *models.AddToCartRequest) (*models.CartItem, error)
	// Method ListItems retrieves the items of a cart together with their books.
	ListItems(ctx context.Context, caller models.Caller, cartID int) ([]models.CartItemDetails, error)
	// Method RemoveItem deletes an item from a cart owned by the caller.
	RemoveItem(ctx context.Context, caller models.Caller, itemID int) error
	// Method CountItems returns the total quantity of items in the user's cart.
	CountItems(ctx context.Context, caller models.Caller, userID int) (int, error)
}

// CartHandler handles HTTP requests for carts and cart items
type CartHandler struct {
	BaseHandler
	service CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(svc CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all cart handler routes behind requireAuth
func (h *CartHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Route("/carts", func(r chi.Router) {
			r.Get("/", h.ListCarts)
			r.Post("/", h.CreateCart)
			r.Get("/count", h.CountItems)
		})
		r.Route("/cart_items", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Post("/", h.AddToCart)
			r.Delete("/{id}", h.RemoveItem)
		})
	})
}

// ListCarts handles GET /carts
// @Summary List carts
// @Description List the carts of a user; admins may pass another user's id
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param user_id query int false "User ID, defaults to the caller"
// @Success 200 {array} models.Cart
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /carts [get]
func (h *CartHandler) ListCarts(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}
	userID, err := queryID(r, "user_id")
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	carts, err := h.service.ListCarts(r.Context(), caller, userID)
	if err != nil {
		h.respondServiceError(w, r, err, "cart not found")
		return
	}
	if carts == nil {
		carts = []models.Cart{}
	}

	h.respondJSON(w, http.StatusOK, carts)
}

// CreateCart handles POST /carts
// @Summary Get or create a cart
// @Description Return the user's cart, creating it if it does not exist yet
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCartRequest false "Target user, defaults to the caller"
// @Success 201 {object} models.Cart
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /carts [post]
func (h *CartHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CreateCartRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	cart, err := h.service.CreateCart(r.Context(), caller, req.UserID)
	if err != nil {
		h.respondServiceError(w, r, err, "user not found")
		return
	}

	h.respondJSON(w, http.StatusCreated, cart)
}

// CountItems handles GET /carts/count
// @Summary Count cart items
// @Description Sum of item quantities in the user's cart, 0 without a cart
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param user_id query int false "User ID, defaults to the caller"
// @Success 200 {object} models.CountResponse
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /carts/count [get]
func (h *CartHandler) CountItems(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}
	userID, err := queryID(r, "user_id")
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	count, err := h.service.CountItems(r.Context(), caller, userID)
	if err != nil {
		h.respondServiceError(w, r, err, "cart not found")
		return
	}

	h.respondJSON(w, http.StatusOK, models.CountResponse{Count: count})
}

// AddToCart handles POST /cart_items
// @Summary Add a book to a cart
// @Description Add quantity of a book, creating the cart on first use and incrementing an existing item
// @Tags cart items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AddToCartRequest true "Item data"
// @Success 201 {object} models.AddToCartResponse
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /cart_items [post]
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.AddToCartRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	item, err := h.service.AddToCart(r.Context(), caller, &req)
	if err != nil {
		h.respondServiceError(w, r, err, "book or cart not found")
		return
	}

	h.respondJSON(w, http.StatusCreated, models.AddToCartResponse{
		Message: "item added to cart",
		Item:    item,
	})
}

// ListItems handles GET /cart_items
// @Summary List cart items
// @Tags cart items
// @Produce json
// @Security BearerAuth
// @Param cart_id query int true "Cart ID"
// @Success 200 {array} models.CartItemDetails
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /cart_items [get]
func (h *CartHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}
	cartID, err := queryID(r, "cart_id")
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	items, err := h.service.ListItems(r.Context(), caller, cartID)
	if err != nil {
		h.respondServiceError(w, r, err, "cart not found")
		return
	}
	if items == nil {
		items = []models.CartItemDetails{}
	}

	h.respondJSON(w, http.StatusOK, items)
}

// RemoveItem handles DELETE /cart_items/{id}
// @Summary Remove a cart item
// @Description Delete an item from a cart owned by the caller; admins may delete any item
// @Tags cart items
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cart item ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorsResponse
// @Failure 401 {object} models.MessageResponse
// @Failure 403 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /cart_items/{id} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		h.respondMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}

	if err := h.service.RemoveItem(r.Context(), caller, id); err != nil {
		h.respondServiceError(w, r, err, "cart item not found")
		return
	}

	h.respondMessage(w, http.StatusOK, "item removed from cart")
}
