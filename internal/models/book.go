package models

import "time"

// Book represents a catalog entry
type Book struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Price          float64   `json:"price"`
	Stock          int       `json:"stock"`
	CoverURL       string    `json:"cover_url"`
	PromotionPrice *float64  `json:"promotion_price"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookRequest represents a create or update request from the admin console
type BookRequest struct {
	Title          string   `json:"title"`
	Author         string   `json:"author"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Price          float64  `json:"price"`
	Stock          int      `json:"stock"`
	CoverURL       string   `json:"cover_url"`
	PromotionPrice *float64 `json:"promotion_price"`
}

// BookSortColumn is a whitelisted column for ordering the catalog
type BookSortColumn string

const (
	SortByID     BookSortColumn = "id"
	SortByTitle  BookSortColumn = "title"
	SortByAuthor BookSortColumn = "author"
	SortByPrice  BookSortColumn = "price"
	SortByStock  BookSortColumn = "stock"
)

// SortOrder is the direction of catalog ordering
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)
