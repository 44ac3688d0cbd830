package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookstore/backend/internal/models"
	"go.uber.org/zap"
)

// CartRepository is the interface that wraps methods for carts and cart_items data access
type CartRepository interface {
	// Method GetByUserID retrieves the carts of a user; the schema allows at most one.
	GetByUserID(ctx context.Context, userID int) ([]models.Cart, error)
	// Method GetByID retrieves a cart. A missing row is models.ErrNotFound.
	GetByID(ctx context.Context, cartID int) (*models.Cart, error)
	// Method GetOrCreate atomically returns the user's cart, creating it on first use.
	GetOrCreate(ctx context.Context, userID int) (*models.Cart, error)
	// Method AddItem atomically gets or creates the user's cart and adds quantity to the (cart, book) item.
	//
	// Either both steps commit or neither does. An unknown user or book is models.ErrNotFound.
	AddItem(ctx context.Context, userID, bookID, quantity int) (*models.CartItem, error)
	// Method ListItems retrieves the items of a cart joined with their books.
	ListItems(ctx context.Context, cartID int) ([]models.CartItemDetails, error)
	// Method GetItemOwner returns the user owning the cart that holds the item.
	GetItemOwner(ctx context.Context, itemID int) (int, error)
	DeleteItem(ctx context.Context, itemID int) error
	// Method CountItems sums item quantities in the user's cart, 0 when there is none.
	CountItems(ctx context.Context, userID int) (int, error)
}

type cartService struct {
	repo   CartRepository
	logger *zap.Logger
}

// NewCartService creates a new cart coordinator
func NewCartService(repo CartRepository, logger *zap.Logger) *cartService {
	return &cartService{
		repo:   repo,
		logger: logger,
	}
}

// resolveUser picks the user a request targets: the caller by default,
// another user only for admins
func resolveUser(caller models.Caller, userID int) (int, error) {
	if userID < 0 {
		return 0, models.NewValidationError([]string{"user_id must be a positive integer"})
	}
	if userID == 0 || userID == caller.UserID {
		return caller.UserID, nil
	}
	if !caller.IsAdmin {
		return 0, models.ErrForbidden
	}
	return userID, nil
}

func authorizeOwner(caller models.Caller, ownerID int) error {
	if ownerID != caller.UserID && !caller.IsAdmin {
		return models.ErrForbidden
	}
	return nil
}

// ListCarts returns the carts of the target user
func (s *cartService) ListCarts(ctx context.Context, caller models.Caller, userID int) ([]models.Cart, error) {
	target, err := resolveUser(caller, userID)
	if err != nil {
		return nil, err
	}

	carts, err := s.repo.GetByUserID(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	return carts, nil
}

// CreateCart returns the target user's cart, creating it if needed
func (s *cartService) CreateCart(ctx context.Context, caller models.Caller, userID int) (*models.Cart, error) {
	target, err := resolveUser(caller, userID)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.GetOrCreate(ctx, target)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// AddToCart adds a book to a cart, incrementing the quantity if it is already there
//
// Without a cart ID the caller's own cart is used and created on first use.
// A given cart ID must belong to the caller unless the caller is an admin.
func (s *cartService) AddToCart(ctx context.Context, caller models.Caller, req *models.AddToCartRequest) (*models.CartItem, error) {
	var errs []string
	if req.BookID <= 0 {
		errs = append(errs, "book_id must be a positive integer")
	}
	if req.Quantity <= 0 {
		errs = append(errs, "quantity must be a positive integer")
	}
	if req.CartID < 0 {
		errs = append(errs, "cart_id must be a positive integer")
	}
	if err := models.NewValidationError(errs); err != nil {
		return nil, err
	}

	owner := caller.UserID
	if req.CartID > 0 {
		cart, err := s.repo.GetByID(ctx, req.CartID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to get cart: %w", err)
		}
		if err := authorizeOwner(caller, cart.UserID); err != nil {
			return nil, err
		}
		owner = cart.UserID
	}

	item, err := s.repo.AddItem(ctx, owner, req.BookID, req.Quantity)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Debug("item added to cart",
		zap.Int("userId", owner),
		zap.Int("cartId", item.CartID),
		zap.Int("bookId", item.BookID),
		zap.Int("quantity", item.Quantity))
	return item, nil
}

// ListItems returns the contents of a cart the caller may see
func (s *cartService) ListItems(ctx context.Context, caller models.Caller, cartID int) ([]models.CartItemDetails, error) {
	if cartID <= 0 {
		return nil, models.NewValidationError([]string{"cart_id is required"})
	}

	cart, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if err := authorizeOwner(caller, cart.UserID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

// RemoveItem deletes an item from a cart owned by the caller
func (s *cartService) RemoveItem(ctx context.Context, caller models.Caller, itemID int) error {
	owner, err := s.repo.GetItemOwner(ctx, itemID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if err := authorizeOwner(caller, owner); err != nil {
		s.logger.Warn("cart item removal denied",
			zap.Int("userId", caller.UserID), zap.Int("itemId", itemID), zap.Int("ownerId", owner))
		return err
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// CountItems returns the total quantity in the target user's cart
func (s *cartService) CountItems(ctx context.Context, caller models.Caller, userID int) (int, error) {
	target, err := resolveUser(caller, userID)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.CountItems(ctx, target)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}
