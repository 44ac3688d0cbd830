package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookstore/backend/internal/models"
	"go.uber.org/zap"
)

// BookRepository is the interface that wraps methods for books table data access
type BookRepository interface {
	// Method List retrieves the whole catalog ordered by a whitelisted column and direction.
	List(ctx context.Context, sortBy models.BookSortColumn, order models.SortOrder) ([]models.Book, error)
	GetByID(ctx context.Context, id int) (*models.Book, error)
	Create(ctx context.Context, req *models.BookRequest) (*models.Book, error)
	Update(ctx context.Context, id int, req *models.BookRequest) (*models.Book, error)
	Delete(ctx context.Context, id int) error
}

type bookService struct {
	repo   BookRepository
	logger *zap.Logger
}

// NewBookService creates a new catalog service
func NewBookService(repo BookRepository, logger *zap.Logger) *bookService {
	return &bookService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the catalog sorted by sortParam in orderParam direction
//
// Empty parameters default to id and asc. Anything outside the whitelist is a validation error.
func (s *bookService) List(ctx context.Context, sortParam, orderParam string) ([]models.Book, error) {
	sortBy := models.SortByID
	if sortParam != "" {
		sortBy = models.BookSortColumn(strings.ToLower(sortParam))
	}
	order := models.SortAsc
	if orderParam != "" {
		order = models.SortOrder(strings.ToLower(orderParam))
	}

	var errs []string
	switch sortBy {
	case models.SortByID, models.SortByTitle, models.SortByAuthor, models.SortByPrice, models.SortByStock:
	default:
		errs = append(errs, "sort must be one of id, title, author, price, stock")
	}
	if order != models.SortAsc && order != models.SortDesc {
		errs = append(errs, "order must be asc or desc")
	}
	if err := models.NewValidationError(errs); err != nil {
		return nil, err
	}

	books, err := s.repo.List(ctx, sortBy, order)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetByID returns a single book
func (s *bookService) GetByID(ctx context.Context, id int) (*models.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// Create validates and stores a new book
func (s *bookService) Create(ctx context.Context, req *models.BookRequest) (*models.Book, error) {
	if err := validateBook(req); err != nil {
		return nil, err
	}

	book, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	s.logger.Info("book created", zap.Int("bookId", book.ID))
	return book, nil
}

// Update validates and overwrites a book
func (s *bookService) Update(ctx context.Context, id int, req *models.BookRequest) (*models.Book, error) {
	if err := validateBook(req); err != nil {
		return nil, err
	}

	book, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return book, nil
}

// Delete removes a book; cart items referencing it are removed by the schema
func (s *bookService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	s.logger.Info("book deleted", zap.Int("bookId", id))
	return nil
}

func validateBook(req *models.BookRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)

	var errs []string
	if req.Title == "" || req.Author == "" {
		errs = append(errs, "title and author are required")
	}
	if req.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	if req.Stock < 0 {
		errs = append(errs, "stock must not be negative")
	}
	if req.PromotionPrice != nil && *req.PromotionPrice < 0 {
		errs = append(errs, "promotion price must not be negative")
	}
	return models.NewValidationError(errs)
}
