package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/99minutos/product-catalog/internal/core/domain"
	"github.com/99minutos/product-catalog/internal/core/ports"
	"github.com/99minutos/product-catalog/internal/metrics"
)

// newProductView copies only the fields meant for external exposure. New
// fields added to domain.Product stay private until they are listed here.
func newProductView(p *domain.Product) *ports.ProductView {
	return &ports.ProductView{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
		DeletedAt: p.DeletedAt,
	}
}

// enrichOne resolves the creator and, when present, the last updater in
// parallel. Any failure fails the whole call.
func (s *ProductService) enrichOne(ctx context.Context, p *domain.Product) (*ports.ProductView, error) {
	view := newProductView(p)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := s.users.Resolve(gctx, p.CreatedByID)
		if err != nil {
			return fmt.Errorf("resolve created_by of product %d: %w", p.ID, err)
		}
		view.CreatedBy = user
		return nil
	})
	if p.LastUpdatedByID != nil {
		updaterID := *p.LastUpdatedByID
		g.Go(func() error {
			user, err := s.users.Resolve(gctx, updaterID)
			if err != nil {
				return fmt.Errorf("resolve last_updated_by of product %d: %w", p.ID, err)
			}
			view.LastUpdatedBy = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// enrichPage issues one summary request per distinct user referenced on the
// page. Unresolved references render as nil; the page order is preserved.
func (s *ProductService) enrichPage(ctx context.Context, products []*domain.Product) ([]ports.ProductView, error) {
	data := make([]ports.ProductView, 0, len(products))
	if len(products) == 0 {
		return data, nil
	}

	summaries, err := s.users.ResolveMany(ctx, referencedUserIDs(products))
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("enrich products: %w", ctx.Err())
		}
		metrics.EnrichmentDegradedTotal.Inc()
		s.logger.Warn().Err(err).Int("products", len(products)).Msg("partial user enrichment")
	}

	for _, p := range products {
		view := newProductView(p)
		view.CreatedBy = summaries[p.CreatedByID]
		if p.LastUpdatedByID != nil {
			view.LastUpdatedBy = summaries[*p.LastUpdatedByID]
		}
		data = append(data, *view)
	}
	return data, nil
}

// referencedUserIDs returns the distinct creator and updater ids in page order.
func referencedUserIDs(products []*domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	ids := make([]string, 0, len(products))
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, p := range products {
		add(p.CreatedByID)
		if p.LastUpdatedByID != nil {
			add(*p.LastUpdatedByID)
		}
	}
	return ids
}
