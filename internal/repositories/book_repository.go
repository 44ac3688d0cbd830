package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookstore/backend/internal/models"
	"go.uber.org/zap"
)

type bookRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *sql.DB, logger *zap.Logger) *bookRepository {
	return &bookRepository{
		db:     db,
		logger: logger,
	}
}

const bookColumns = `id, title, author, description, category, price, stock, cover_url, promotion_price, created_at`

func scanBook(row rowScanner) (*models.Book, error) {
	book := &models.Book{}
	var promotion sql.NullFloat64
	if err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.Category,
		&book.Price,
		&book.Stock,
		&book.CoverURL,
		&promotion,
		&book.CreatedAt,
	); err != nil {
		return nil, err
	}
	if promotion.Valid {
		p := promotion.Float64
		book.PromotionPrice = &p
	}
	return book, nil
}

// List retrieves the whole catalog ordered by a whitelisted column
func (r *bookRepository) List(ctx context.Context, sortBy models.BookSortColumn, order models.SortOrder) ([]models.Book, error) {
	var column string
	switch sortBy {
	case models.SortByID, models.SortByTitle, models.SortByAuthor, models.SortByPrice, models.SortByStock:
		column = string(sortBy)
	default:
		return nil, fmt.Errorf("invalid sort column: %s", sortBy)
	}

	var direction string
	switch order {
	case models.SortAsc:
		direction = "ASC"
	case models.SortDesc:
		direction = "DESC"
	default:
		return nil, fmt.Errorf("invalid sort order: %s", order)
	}

	// Column and direction come from the switches above, never from raw input
	query := fmt.Sprintf(`SELECT %s FROM books ORDER BY %s %s, id ASC`, bookColumns, column, direction)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query books", zap.Error(err))
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			r.logger.Error("failed to scan book", zap.Error(err))
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return books, nil
}

// GetByID retrieves a book by ID
func (r *bookRepository) GetByID(ctx context.Context, id int) (*models.Book, error) {
	book, err := scanBook(r.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get book by id", zap.Error(err), zap.Int("bookId", id))
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}
	return book, nil
}

// Create inserts a book and returns the stored row
func (r *bookRepository) Create(ctx context.Context, req *models.BookRequest) (*models.Book, error) {
	query := `
		INSERT INTO books (title, author, description, category, price, stock, cover_url, promotion_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		req.Title, req.Author, req.Description, req.Category, req.Price, req.Stock, req.CoverURL, nullableFloat(req.PromotionPrice))
	if err != nil {
		r.logger.Error("failed to create book", zap.Error(err))
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return r.GetByID(ctx, int(id))
}

// Update overwrites every editable column of a book and returns the stored row
func (r *bookRepository) Update(ctx context.Context, id int, req *models.BookRequest) (*models.Book, error) {
	query := `
		UPDATE books SET
			title = ?,
			author = ?,
			description = ?,
			category = ?,
			price = ?,
			stock = ?,
			cover_url = ?,
			promotion_price = ?
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query,
		req.Title, req.Author, req.Description, req.Category, req.Price, req.Stock, req.CoverURL, nullableFloat(req.PromotionPrice), id); err != nil {
		r.logger.Error("failed to update book", zap.Error(err), zap.Int("bookId", id))
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Delete removes a book
func (r *bookRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete book", zap.Error(err), zap.Int("bookId", id))
		return fmt.Errorf("failed to delete book: %w", err)
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

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
