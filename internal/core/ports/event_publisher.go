package ports

import (
	"context"

	"github.com/99minutos/product-catalog/internal/core/domain"
)

// ProductEventPublisher ships lifecycle events to downstream consumers.
type ProductEventPublisher interface {
	Publish(ctx context.Context, event domain.ProductEvent) error
}
