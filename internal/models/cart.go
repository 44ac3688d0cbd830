package models

import "time"

// Cart represents a user's shopping cart, at most one per user
type Cart struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem is a (cart, book) pair with an accumulated quantity
type CartItem struct {
	ID       int `json:"id"`
	CartID   int `json:"cart_id"`
	BookID   int `json:"book_id"`
	Quantity int `json:"quantity"`
}

// CartItemDetails is a cart item joined with the book it references
type CartItemDetails struct {
	ID             int      `json:"id"`
	BookID         int      `json:"book_id"`
	Quantity       int      `json:"quantity"`
	Title          string   `json:"title"`
	Author         string   `json:"author"`
	Price          float64  `json:"price"`
	PromotionPrice *float64 `json:"promotion_price"`
	CoverURL       string   `json:"cover_url"`
}

// Caller is the authenticated identity a cart operation runs on behalf of
type Caller struct {
	UserID  int
	IsAdmin bool
}

// AddToCartRequest represents a request to add a book to the caller's cart
type AddToCartRequest struct {
	CartID   int `json:"cart_id,omitempty"`
	BookID   int `json:"book_id"`
	Quantity int `json:"quantity"`
}

// CreateCartRequest represents a request to get or create a cart
type CreateCartRequest struct {
	UserID int `json:"user_id,omitempty"`
}
