package ports

import (
	"context"

	"github.com/99minutos/product-catalog/internal/core/domain"
)

// UserSummaryClient resolves user references against the user service.
type UserSummaryClient interface {
	// Resolve fails with domain.ErrRemoteNotFound or domain.ErrRemoteUnavailable.
	Resolve(ctx context.Context, id string) (*domain.UserSummary, error)
	// ResolveMany resolves every distinct id concurrently. The map holds the
	// summaries that resolved; the error joins every failure.
	ResolveMany(ctx context.Context, ids []string) (map[string]*domain.UserSummary, error)
}
