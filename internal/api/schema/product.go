package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/product-catalog/internal/core/domain"
	"github.com/99minutos/product-catalog/internal/core/ports"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 1000000
)

// ErrorResponse is the standard error envelope returned on all 4xx/5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// --- Requests ---

type CreateProductRequest struct {
	Name  string          `json:"name"  validate:"required,min=2,max=200" example:"Widget"`
	Price decimal.Decimal `json:"price" validate:"positive,decimalplaces=4" swaggertype:"string" example:"19.99"`
}

func (r CreateProductRequest) ToInput() ports.CreateProductInput {
	return ports.CreateProductInput{Name: r.Name, Price: r.Price}
}

// UpdateProductRequest only writes the fields that are present.
type UpdateProductRequest struct {
	Name  *string          `json:"name,omitempty"  validate:"omitnil,min=2,max=200"`
	Price *decimal.Decimal `json:"price,omitempty" validate:"omitnil,positive,decimalplaces=4" swaggertype:"string"`
}

func (r UpdateProductRequest) ToInput(id int64) ports.UpdateProductInput {
	return ports.UpdateProductInput{ID: id, Name: r.Name, Price: r.Price}
}

// PaginationRequest is 1-based. Use NewPaginationRequest so absent fields
// keep their defaults.
type PaginationRequest struct {
	Page  int `json:"page"  query:"page"  validate:"min=1,max=1000000"`
	Limit int `json:"limit" query:"limit" validate:"min=1,max=100"`
}

func NewPaginationRequest() PaginationRequest {
	return PaginationRequest{Page: DefaultPage, Limit: DefaultLimit}
}

func (r PaginationRequest) ToInput() ports.PaginationInput {
	return ports.PaginationInput{Page: r.Page, Limit: r.Limit}
}

// --- Responses ---

type UserSummaryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// RawProductResponse is returned by create, before any enrichment.
type RawProductResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Price           string     `json:"price" example:"19.99"`
	CreatedAt       time.Time  `json:"created_at"`
	DeletedAt       *time.Time `json:"deleted_at"`
	CreatedByID     string     `json:"created_by_id"`
	LastUpdatedByID *string    `json:"last_updated_by_id"`
}

// ProductResponse carries resolved user summaries in place of the raw ids.
// A reference whose summary could not be resolved is null.
type ProductResponse struct {
	ID            int64                `json:"id"`
	Name          string               `json:"name"`
	Price         string               `json:"price" example:"19.99"`
	CreatedAt     time.Time            `json:"created_at"`
	DeletedAt     *time.Time           `json:"deleted_at"`
	CreatedBy     *UserSummaryResponse `json:"created_by"`
	LastUpdatedBy *UserSummaryResponse `json:"last_updated_by"`
}

type PageMetaResponse struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	LastPage int   `json:"last_page"`
}

type ProductPageResponse struct {
	Meta PageMetaResponse  `json:"meta"`
	Data []ProductResponse `json:"data"`
}

// --- Mappers ---

func ToRawProductResponse(p *domain.Product) RawProductResponse {
	return RawProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price.String(),
		CreatedAt:       p.CreatedAt,
		DeletedAt:       p.DeletedAt,
		CreatedByID:     p.CreatedByID,
		LastUpdatedByID: p.LastUpdatedByID,
	}
}

func ToProductResponse(v *ports.ProductView) ProductResponse {
	return ProductResponse{
		ID:            v.ID,
		Name:          v.Name,
		Price:         v.Price.String(),
		CreatedAt:     v.CreatedAt,
		DeletedAt:     v.DeletedAt,
		CreatedBy:     toUserSummaryResponse(v.CreatedBy),
		LastUpdatedBy: toUserSummaryResponse(v.LastUpdatedBy),
	}
}

func ToProductPageResponse(p *ports.ProductPage) ProductPageResponse {
	data := make([]ProductResponse, 0, len(p.Data))
	for i := range p.Data {
		data = append(data, ToProductResponse(&p.Data[i]))
	}
	return ProductPageResponse{
		Meta: PageMetaResponse{
			Total:    p.Meta.Total,
			Page:     p.Meta.Page,
			LastPage: p.Meta.LastPage,
		},
		Data: data,
	}
}

func toUserSummaryResponse(u *domain.UserSummary) *UserSummaryResponse {
	if u == nil {
		return nil
	}
	return &UserSummaryResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}
