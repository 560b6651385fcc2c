package models

import "time"

type Product struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description"`
	Price         float64    `json:"price"`
	StockQuantity int64      `json:"stock_quantity"`
	CategoryID    *int64     `json:"category_id"`
	ImageURL      *string    `json:"image_url"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
	Category      *Category  `json:"category"`
}

type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=200"`
	Description   *string `json:"description,omitempty"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	StockQuantity int64   `json:"stock_quantity" validate:"gte=0"`
	CategoryID    *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	ImageURL      *string `json:"image_url,omitempty" validate:"omitempty,max=500"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// UpdateProductRequest only carries the fields the client sent.
type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity *int64   `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	CategoryID    *int64   `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	ImageURL      *string  `json:"image_url,omitempty" validate:"omitempty,max=500"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// ProductQuery is the full parameter tuple of a product listing.
type ProductQuery struct {
	Page       int    `json:"page" validate:"gte=1"`
	Size       int    `json:"size" validate:"gte=1,lte=100"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Search     string `json:"search,omitempty" validate:"max=200"`
}

// HasCategory reports whether the listing is filtered by category.
// Non-positive ids are treated as no filter.
func (q ProductQuery) HasCategory() bool {
	return q.CategoryID != nil && *q.CategoryID > 0
}

type ProductPage struct {
	Items []*Product `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Pages int        `json:"pages"`
}

type StockAdjustment struct {
	ProductID     int64 `json:"product_id"`
	PreviousStock int64 `json:"previous_stock"`
	Change        int64 `json:"change"`
	NewStock      int64 `json:"new_stock"`
}
