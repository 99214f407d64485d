package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/product-catalog/internal/core/domain"
)

// CreateProductInput carries the fields of a new product.
type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
}

// UpdateProductInput separates the target id from the mutable field set.
type UpdateProductInput struct {
	ID    int64
	Name  *string
	Price *decimal.Decimal
}

// PaginationInput is 1-based.
type PaginationInput struct {
	Page  int
	Limit int
}

// ProductView is the enrichment-safe projection of a product: the raw user
// reference ids are never copied into it.
type ProductView struct {
	ID            int64
	Name          string
	Price         decimal.Decimal
	CreatedAt     time.Time
	DeletedAt     *time.Time
	CreatedBy     *domain.UserSummary
	LastUpdatedBy *domain.UserSummary
}

// PageMeta describes a page of results. LastPage is ceil(Total/limit).
type PageMeta struct {
	Total    int64
	Page     int
	LastPage int
}

// ProductPage is returned by FindAll.
type ProductPage struct {
	Meta PageMeta
	Data []ProductView
}

// ProductService defines the product lifecycle use cases.
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput, caller domain.Identity) (*domain.Product, error)
	FindAll(ctx context.Context, input PaginationInput, caller domain.Identity) (*ProductPage, error)
	FindOne(ctx context.Context, id int64, caller domain.Identity) (*ProductView, error)
	Update(ctx context.Context, input UpdateProductInput, caller domain.Identity) (*ProductView, error)
	Remove(ctx context.Context, id int64, caller domain.Identity) (*ProductView, error)
	Restore(ctx context.Context, id int64, caller domain.Identity) (*ProductView, error)
}
