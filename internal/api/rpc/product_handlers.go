// Package rpc exposes the product use cases as message patterns on the
// request-reply transport. Each payload carries the caller under "user".
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/99minutos/product-catalog/internal/api"
	"github.com/99minutos/product-catalog/internal/api/schema"
	"github.com/99minutos/product-catalog/internal/core/domain"
	"github.com/99minutos/product-catalog/internal/core/ports"
	"github.com/99minutos/product-catalog/internal/infrastructure/messaging"
)

const (
	PatternHealth   = "product.health"
	PatternCreate   = "product.create"
	PatternFindAll  = "product.find.all"
	PatternFindOne  = "product.find.id"
	PatternUpdate   = "product.update"
	PatternRemove   = "product.remove"
	PatternRestore  = "product.restore"
	healthyResponse = "product service is up and running!"
)

// Registrar is satisfied by *messaging.Server.
type Registrar interface {
	Handle(pattern string, h messaging.HandlerFunc)
}

type validator interface {
	Validate(i any) error
}

type createPayload struct {
	User    domain.Identity             `json:"user"`
	Product schema.CreateProductRequest `json:"product"`
}

type findAllPayload struct {
	User       domain.Identity          `json:"user"`
	Pagination schema.PaginationRequest `json:"pagination"`
}

type idPayload struct {
	User domain.Identity `json:"user"`
	ID   int64           `json:"id"`
}

type updateProductMessage struct {
	ID int64 `json:"id"`
	schema.UpdateProductRequest
}

type updatePayload struct {
	User    domain.Identity      `json:"user"`
	Product updateProductMessage `json:"product"`
}

// ProductHandlers adapts the product service to message patterns.
type ProductHandlers struct {
	service  ports.ProductService
	validate validator
}

func NewProductHandlers(service ports.ProductService, v validator) *ProductHandlers {
	return &ProductHandlers{service: service, validate: v}
}

// Register binds every product pattern on r.
func (h *ProductHandlers) Register(r Registrar) {
	r.Handle(PatternHealth, h.health)
	r.Handle(PatternCreate, h.create)
	r.Handle(PatternFindAll, h.findAll)
	r.Handle(PatternFindOne, h.findOne)
	r.Handle(PatternUpdate, h.update)
	r.Handle(PatternRemove, h.remove)
	r.Handle(PatternRestore, h.restore)
}

func (h *ProductHandlers) health(context.Context, json.RawMessage) (any, error) {
	return healthyResponse, nil
}

func (h *ProductHandlers) create(ctx context.Context, data json.RawMessage) (any, error) {
	var p createPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if err := authorize(p.User); err != nil {
		return nil, err
	}
	if err := h.validate.Validate(p.Product); err != nil {
		return nil, err
	}

	product, err := h.service.Create(ctx, p.Product.ToInput(), p.User)
	if err != nil {
		return nil, err
	}
	return schema.ToRawProductResponse(product), nil
}

func (h *ProductHandlers) findAll(ctx context.Context, data json.RawMessage) (any, error) {
	p := findAllPayload{Pagination: schema.NewPaginationRequest()}
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if err := authorize(p.User); err != nil {
		return nil, err
	}
	if err := h.validate.Validate(p.Pagination); err != nil {
		return nil, err
	}

	page, err := h.service.FindAll(ctx, p.Pagination.ToInput(), p.User)
	if err != nil {
		return nil, err
	}
	return schema.ToProductPageResponse(page), nil
}

func (h *ProductHandlers) findOne(ctx context.Context, data json.RawMessage) (any, error) {
	return h.byID(ctx, data, h.service.FindOne)
}

func (h *ProductHandlers) remove(ctx context.Context, data json.RawMessage) (any, error) {
	return h.byID(ctx, data, h.service.Remove)
}

func (h *ProductHandlers) restore(ctx context.Context, data json.RawMessage) (any, error) {
	return h.byID(ctx, data, h.service.Restore)
}

func (h *ProductHandlers) update(ctx context.Context, data json.RawMessage) (any, error) {
	var p updatePayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if err := authorize(p.User); err != nil {
		return nil, err
	}
	if err := checkID(p.Product.ID); err != nil {
		return nil, err
	}
	if err := h.validate.Validate(p.Product.UpdateProductRequest); err != nil {
		return nil, err
	}

	view, err := h.service.Update(ctx, p.Product.ToInput(p.Product.ID), p.User)
	if err != nil {
		return nil, err
	}
	return schema.ToProductResponse(view), nil
}

type byIDFunc func(ctx context.Context, id int64, caller domain.Identity) (*ports.ProductView, error)

func (h *ProductHandlers) byID(ctx context.Context, data json.RawMessage, fn byIDFunc) (any, error) {
	var p idPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if err := authorize(p.User); err != nil {
		return nil, err
	}
	if err := checkID(p.ID); err != nil {
		return nil, err
	}

	view, err := fn(ctx, p.ID, p.User)
	if err != nil {
		return nil, err
	}
	return schema.ToProductResponse(view), nil
}

func decode(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// authorize applies the same role gate as the HTTP routes.
func authorize(caller domain.Identity) error {
	if caller.ID == "" {
		return domain.ErrUnauthenticated
	}
	if !domain.HasRequiredRole(caller.Roles, []string{domain.RoleAdmin, domain.RoleUser}) {
		return domain.ErrForbidden
	}
	return nil
}

func checkID(id int64) error {
	if id < 1 {
		return fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidInput)
	}
	return nil
}

// MapError reports handler errors with the same statuses as the HTTP surface.
func MapError(log zerolog.Logger) messaging.ErrorMapper {
	return func(err error) (int, string) {
		code, msg := api.ResolveStatus(err)
		if code >= http.StatusInternalServerError {
			log.Error().Err(err).Int("status", code).Msg("message handling failed")
		}
		return code, msg
	}
}
