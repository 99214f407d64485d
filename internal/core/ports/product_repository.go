package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/product-catalog/internal/core/domain"
)

// ProductFilter carries the visibility filter applied at query level.
// IncludeDeleted is set only for admin callers.
type ProductFilter struct {
	IncludeDeleted bool
}

// ProductChanges is the field set written by a single Update call.
// Nil pointers leave the stored value untouched.
type ProductChanges struct {
	Name  *string
	Price *decimal.Decimal
	// DeletedAt sets the soft-delete timestamp; ClearDeletedAt resets it to null.
	DeletedAt      *time.Time
	ClearDeletedAt bool
	// LastUpdatedByID is always written.
	LastUpdatedByID string
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	// Create assigns the identifier and stores the product.
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	// List returns up to take products after skipping skip, ordered by id.
	List(ctx context.Context, filter ProductFilter, skip, take int) ([]*domain.Product, error)
	// FindByID returns domain.ErrProductNotFound when no product has the id.
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, id int64, changes ProductChanges) error
}
