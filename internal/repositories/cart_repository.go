package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookstore/backend/internal/models"
	"go.uber.org/zap"
)

// cartRepository implements the cart protocol on the carts and cart_items tables.
//
// Both halves of add-to-cart are single upsert statements keyed on unique
// constraints (carts.user_id and cart_items(cart_id, book_id)) and run in one
// transaction, so concurrent requests can neither create a second cart nor a
// second item row for the same book.
type cartRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *sql.DB, logger *zap.Logger) *cartRepository {
	return &cartRepository{
		db:     db,
		logger: logger,
	}
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetByUserID retrieves the carts of a user, at most one under the unique constraint
func (r *cartRepository) GetByUserID(ctx context.Context, userID int) ([]models.Cart, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, created_at FROM carts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		r.logger.Error("failed to query carts", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to query carts: %w", err)
	}
	defer rows.Close()

	carts := []models.Cart{}
	for rows.Next() {
		var cart models.Cart
		if err := rows.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
			r.logger.Error("failed to scan cart", zap.Error(err))
			return nil, fmt.Errorf("failed to scan cart: %w", err)
		}
		carts = append(carts, cart)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return carts, nil
}

// GetByID retrieves a cart by ID
func (r *cartRepository) GetByID(ctx context.Context, cartID int) (*models.Cart, error) {
	return r.getCart(ctx, r.db, cartID)
}

func (r *cartRepository) getCart(ctx context.Context, q execer, cartID int) (*models.Cart, error) {
	var cart models.Cart
	err := q.QueryRowContext(ctx, `SELECT id, user_id, created_at FROM carts WHERE id = ?`, cartID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get cart", zap.Error(err), zap.Int("cartId", cartID))
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart, creating it if it does not exist yet
func (r *cartRepository) GetOrCreate(ctx context.Context, userID int) (*models.Cart, error) {
	var cart *models.Cart
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		cartID, err := r.upsertCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		cart, err = r.getCart(ctx, tx, cartID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds quantity of a book to the user's cart, creating the cart and the item as needed
func (r *cartRepository) AddItem(ctx context.Context, userID, bookID, quantity int) (*models.CartItem, error) {
	var item *models.CartItem
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		cartID, err := r.upsertCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO cart_items (cart_id, book_id, quantity)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE
				quantity = quantity + VALUES(quantity)
		`
		if _, err := tx.ExecContext(ctx, query, cartID, bookID, quantity); err != nil {
			if isForeignKeyMissing(err) {
				return models.ErrNotFound
			}
			return fmt.Errorf("failed to upsert cart item: %w", err)
		}

		item = &models.CartItem{CartID: cartID, BookID: bookID}
		err = tx.QueryRowContext(ctx, `SELECT id, quantity FROM cart_items WHERE cart_id = ? AND book_id = ?`, cartID, bookID).
			Scan(&item.ID, &item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to read cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			r.logger.Error("failed to add item to cart", zap.Error(err),
				zap.Int("userId", userID), zap.Int("bookId", bookID))
		}
		return nil, err
	}
	return item, nil
}

// upsertCart inserts the user's cart or, on the unique user_id key, reuses the existing row.
// LAST_INSERT_ID(id) makes LastInsertId report the existing cart's id in the update branch.
func (r *cartRepository) upsertCart(ctx context.Context, tx *sql.Tx, userID int) (int, error) {
	query := `
		INSERT INTO carts (user_id)
		VALUES (?)
		ON DUPLICATE KEY UPDATE
			id = LAST_INSERT_ID(id)
	`

	result, err := tx.ExecContext(ctx, query, userID)
	if err != nil {
		if isForeignKeyMissing(err) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("failed to upsert cart: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get cart id: %w", err)
	}
	return int(id), nil
}

// inTx runs fn in a transaction, retrying the whole transaction when InnoDB picks it as a deadlock victim
func (r *cartRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxDeadlockRetries; attempt++ {
		err = r.runTx(ctx, fn)
		if err == nil || !isRetryableLockError(err) {
			return err
		}
		r.logger.Warn("cart transaction hit a lock conflict, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}
	return err
}

func (r *cartRepository) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListItems retrieves the items of a cart joined with their books
func (r *cartRepository) ListItems(ctx context.Context, cartID int) ([]models.CartItemDetails, error) {
	query := `
		SELECT ci.id, ci.book_id, ci.quantity, b.title, b.author, b.price, b.promotion_price, b.cover_url
		FROM cart_items ci
		JOIN books b ON ci.book_id = b.id
		WHERE ci.cart_id = ?
		ORDER BY ci.id
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		r.logger.Error("failed to query cart items", zap.Error(err), zap.Int("cartId", cartID))
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := []models.CartItemDetails{}
	for rows.Next() {
		var item models.CartItemDetails
		var promotion sql.NullFloat64
		if err := rows.Scan(&item.ID, &item.BookID, &item.Quantity, &item.Title, &item.Author,
			&item.Price, &promotion, &item.CoverURL); err != nil {
			r.logger.Error("failed to scan cart item", zap.Error(err))
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		if promotion.Valid {
			p := promotion.Float64
			item.PromotionPrice = &p
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// GetItemOwner returns the user ID owning the cart that holds the item
func (r *cartRepository) GetItemOwner(ctx context.Context, itemID int) (int, error) {
	query := `
		SELECT c.user_id
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE ci.id = ?
	`

	var userID int
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get cart item owner", zap.Error(err), zap.Int("itemId", itemID))
		return 0, fmt.Errorf("failed to get cart item owner: %w", err)
	}
	return userID, nil
}

// DeleteItem removes a cart item by ID
func (r *cartRepository) DeleteItem(ctx context.Context, itemID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ?`, itemID)
	if err != nil {
		r.logger.Error("failed to delete cart item", zap.Error(err), zap.Int("itemId", itemID))
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountItems sums item quantities in the user's cart, 0 when there is no cart
func (r *cartRepository) CountItems(ctx context.Context, userID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(ci.quantity), 0)
		FROM carts c
		JOIN cart_items ci ON ci.cart_id = c.id
		WHERE c.user_id = ?
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		r.logger.Error("failed to count cart items", zap.Error(err), zap.Int("userId", userID))
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}
