package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/product-catalog/internal/core/domain"
	"github.com/99minutos/product-catalog/internal/core/ports"
	"github.com/99minutos/product-catalog/internal/metrics"
)

type ProductService struct {
	repo      ports.ProductRepository
	users     ports.UserSummaryClient
	publisher ports.ProductEventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewProductService(
	repo ports.ProductRepository,
	users ports.UserSummaryClient,
	publisher ports.ProductEventPublisher,
	logger zerolog.Logger,
) *ProductService {
	return &ProductService{
		repo:      repo,
		users:     users,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new active product owned by the caller. The raw record is
// returned without enrichment.
func (s *ProductService) Create(ctx context.Context, input ports.CreateProductInput, caller domain.Identity) (*domain.Product, error) {
	created, err := s.repo.Create(ctx, &domain.Product{
		Name:        input.Name,
		Price:       input.Price,
		CreatedAt:   s.now(),
		CreatedByID: caller.ID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", caller.ID).Msg("failed to create product")
		return nil, fmt.Errorf("create product: %w", err)
	}

	metrics.ProductMutationsTotal.WithLabelValues("create").Inc()
	s.publish(ctx, domain.EventProductCreated, created.ID, caller)
	s.logger.Info().Int64("product_id", created.ID).Str("user_id", caller.ID).Msg("product created")

	return created, nil
}

// FindAll returns one page of products visible to the caller. Admins see
// soft-deleted products as well; the filter is applied by the repository so
// that the count and the page agree.
func (s *ProductService) FindAll(ctx context.Context, input ports.PaginationInput, caller domain.Identity) (*ports.ProductPage, error) {
	if input.Page < 1 || input.Limit < 1 {
		return nil, fmt.Errorf("find products: %w: page and limit must be at least 1", domain.ErrInvalidInput)
	}

	filter := ports.ProductFilter{IncludeDeleted: caller.IsAdmin()}
	skip, inRange := pageOffset(input.Page, input.Limit)

	var (
		total    int64
		products []*domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Count(gctx, filter)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		// A page starting past the largest representable offset is empty.
		if !inRange {
			return nil
		}
		page, err := s.repo.List(gctx, filter, skip, input.Limit)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		products = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data, err := s.enrichPage(ctx, products)
	if err != nil {
		return nil, err
	}

	return &ports.ProductPage{
		Meta: ports.PageMeta{
			Total:    total,
			Page:     input.Page,
			LastPage: lastPage(total, input.Limit),
		},
		Data: data,
	}, nil
}

// FindOne returns the enriched product. Soft-deleted products are reported
// as not found to non-admin callers.
func (s *ProductService) FindOne(ctx context.Context, id int64, caller domain.Identity) (*ports.ProductView, error) {
	product, err := s.findVisible(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, product)
}

// Update applies the field changes to an active product.
func (s *ProductService) Update(ctx context.Context, input ports.UpdateProductInput, caller domain.Identity) (*ports.ProductView, error) {
	return s.transition(ctx, input.ID, domain.ActionUpdate, caller, ports.ProductChanges{
		Name:  input.Name,
		Price: input.Price,
	})
}

// Remove soft-deletes an active product.
func (s *ProductService) Remove(ctx context.Context, id int64, caller domain.Identity) (*ports.ProductView, error) {
	now := s.now()
	return s.transition(ctx, id, domain.ActionRemove, caller, ports.ProductChanges{DeletedAt: &now})
}

// Restore reactivates a soft-deleted product.
func (s *ProductService) Restore(ctx context.Context, id int64, caller domain.Identity) (*ports.ProductView, error) {
	return s.transition(ctx, id, domain.ActionRestore, caller, ports.ProductChanges{ClearDeletedAt: true})
}

var transitionEvents = map[domain.LifecycleAction]domain.ProductEventType{
	domain.ActionUpdate:  domain.EventProductUpdated,
	domain.ActionRemove:  domain.EventProductRemoved,
	domain.ActionRestore: domain.EventProductRestored,
}

// transition runs one edge of the soft-delete state machine: visibility check,
// state check, write, then a fresh enriched read of the stored record.
func (s *ProductService) transition(
	ctx context.Context,
	id int64,
	action domain.LifecycleAction,
	caller domain.Identity,
	changes ports.ProductChanges,
) (*ports.ProductView, error) {
	product, err := s.findVisible(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	if !product.State().Allows(action) {
		metrics.ProductRejectionsTotal.WithLabelValues(string(action)).Inc()
		return nil, domain.NewNotFoundError(id, rejectionReason(action))
	}

	changes.LastUpdatedByID = caller.ID
	if err := s.repo.Update(ctx, id, changes); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.NewNotFoundError(id, "")
		}
		s.logger.Error().Err(err).Int64("product_id", id).Str("action", string(action)).Msg("failed to update product")
		return nil, fmt.Errorf("%s product %d: %w", action, id, err)
	}

	metrics.ProductMutationsTotal.WithLabelValues(string(action)).Inc()
	s.publish(ctx, transitionEvents[action], id, caller)
	s.logger.Info().Int64("product_id", id).Str("action", string(action)).Str("user_id", caller.ID).Msg("product transitioned")

	// The caller already passed the visibility check; a remove must still
	// return the now-deleted record to a non-admin.
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.NewNotFoundError(id, "")
		}
		return nil, fmt.Errorf("reload product %d: %w", id, err)
	}
	return s.enrichOne(ctx, updated)
}

// findVisible fetches a product and hides soft-deleted ones from non-admins.
func (s *ProductService) findVisible(ctx context.Context, id int64, caller domain.Identity) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.NewNotFoundError(id, "")
		}
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}

	if product.IsDeleted() && !caller.IsAdmin() {
		return nil, domain.NewNotFoundError(id, "")
	}
	return product, nil
}

func (s *ProductService) publish(ctx context.Context, eventType domain.ProductEventType, id int64, caller domain.Identity) {
	event := domain.ProductEvent{
		Type:       eventType,
		ProductID:  id,
		ActorID:    caller.ID,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Str("event", string(eventType)).Msg("failed to publish product event")
	}
}

func rejectionReason(action domain.LifecycleAction) string {
	if action == domain.ActionRestore {
		return "already restored"
	}
	return "already deleted"
}

// pageOffset returns (page-1)*limit, or false when it overflows int.
func pageOffset(page, limit int) (int, bool) {
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

// lastPage returns ceil(total/limit); zero when there is nothing to list.
func lastPage(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}
