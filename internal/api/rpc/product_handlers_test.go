package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/99minutos/product-catalog/internal/api/schema"
	"github.com/99minutos/product-catalog/internal/core/domain"
	"github.com/99minutos/product-catalog/internal/core/ports"
	"github.com/99minutos/product-catalog/internal/infrastructure/messaging"
)

// recordingService captures the last call and answers with canned values.
type recordingService struct {
	lastCaller     domain.Identity
	lastPagination ports.PaginationInput
	lastUpdate     ports.UpdateProductInput
	lastID         int64
	err            error
}

func (s *recordingService) Create(_ context.Context, in ports.CreateProductInput, caller domain.Identity) (*domain.Product, error) {
	s.lastCaller = caller
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: 1, Name: in.Name, Price: in.Price, CreatedByID: caller.ID, CreatedAt: time.Now()}, nil
}

func (s *recordingService) FindAll(_ context.Context, in ports.PaginationInput, caller domain.Identity) (*ports.ProductPage, error) {
	s.lastCaller, s.lastPagination = caller, in
	return &ports.ProductPage{Meta: ports.PageMeta{Page: in.Page}}, s.err
}

func (s *recordingService) FindOne(_ context.Context, id int64, caller domain.Identity) (*ports.ProductView, error) {
	return s.view(id, caller)
}

func (s *recordingService) Update(_ context.Context, in ports.UpdateProductInput, caller domain.Identity) (*ports.ProductView, error) {
	s.lastUpdate = in
	return s.view(in.ID, caller)
}

func (s *recordingService) Remove(_ context.Context, id int64, caller domain.Identity) (*ports.ProductView, error) {
	return s.view(id, caller)
}

func (s *recordingService) Restore(_ context.Context, id int64, caller domain.Identity) (*ports.ProductView, error) {
	return s.view(id, caller)
}

func (s *recordingService) view(id int64, caller domain.Identity) (*ports.ProductView, error) {
	s.lastCaller, s.lastID = caller, id
	if s.err != nil {
		return nil, s.err
	}
	return &ports.ProductView{ID: id, Name: "Widget", Price: decimal.NewFromInt(1)}, nil
}

type registry map[string]messaging.HandlerFunc

func (r registry) Handle(pattern string, h messaging.HandlerFunc) { r[pattern] = h }

func setup(svc *recordingService) registry {
	r := registry{}
	NewProductHandlers(svc, schema.NewValidator()).Register(r)
	return r
}

func call(t *testing.T, r registry, pattern, payload string) (any, error) {
	t.Helper()
	h, ok := r[pattern]
	if !ok {
		t.Fatalf("pattern %s not registered", pattern)
	}
	return h(context.Background(), json.RawMessage(payload))
}

func TestRegister_AllPatterns(t *testing.T) {
	r := setup(&recordingService{})
	for _, p := range []string{PatternHealth, PatternCreate, PatternFindAll, PatternFindOne, PatternUpdate, PatternRemove, PatternRestore} {
		if _, ok := r[p]; !ok {
			t.Errorf("pattern %s not registered", p)
		}
	}
}

func TestHealth(t *testing.T) {
	got, err := call(t, setup(&recordingService{}), PatternHealth, `null`)
	if err != nil || got != healthyResponse {
		t.Fatalf("unexpected health reply: %v, %v", got, err)
	}
}

func TestCreate_UsesPayloadIdentity(t *testing.T) {
	svc := &recordingService{}
	got, err := call(t, setup(svc), PatternCreate,
		`{"user":{"id":"U1","roles":["user"]},"product":{"name":"Widget","price":19.99}}`)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if svc.lastCaller.ID != "U1" {
		t.Errorf("expected caller U1, got %+v", svc.lastCaller)
	}
	raw, ok := got.(schema.RawProductResponse)
	if !ok || raw.CreatedByID != "U1" || raw.Price != "19.99" {
		t.Errorf("unexpected reply: %#v", got)
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"missing user", `{"product":{"name":"Widget","price":1}}`, domain.ErrUnauthenticated},
		{"unknown role", `{"user":{"id":"U1","roles":["guest"]},"product":{"name":"Widget","price":1}}`, domain.ErrForbidden},
		{"invalid product", `{"user":{"id":"U1","roles":["user"]},"product":{"name":"W","price":0}}`, domain.ErrInvalidInput},
		{"malformed", `{"user":`, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(t, setup(&recordingService{}), PatternCreate, tt.payload)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFindAll_DefaultsPagination(t *testing.T) {
	svc := &recordingService{}
	r := setup(svc)

	if _, err := call(t, r, PatternFindAll, `{"user":{"id":"A1","roles":["admin"]}}`); err != nil {
		t.Fatalf("find all: %v", err)
	}
	if svc.lastPagination.Page != 1 || svc.lastPagination.Limit != 10 {
		t.Errorf("expected defaults, got %+v", svc.lastPagination)
	}

	if _, err := call(t, r, PatternFindAll, `{"user":{"id":"A1","roles":["admin"]},"pagination":{"limit":2}}`); err != nil {
		t.Fatalf("find all: %v", err)
	}
	if svc.lastPagination.Page != 1 || svc.lastPagination.Limit != 2 {
		t.Errorf("expected page 1 limit 2, got %+v", svc.lastPagination)
	}

	_, err := call(t, r, PatternFindAll, `{"user":{"id":"A1","roles":["admin"]},"pagination":{"page":0}}`)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for page 0, got %v", err)
	}

	_, err = call(t, r, PatternFindAll, `{"user":{"id":"A1","roles":["admin"]},"pagination":{"page":92233720368547760,"limit":100}}`)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for an out-of-range page, got %v", err)
	}
}

func TestByID_Patterns(t *testing.T) {
	for _, pattern := range []string{PatternFindOne, PatternRemove, PatternRestore} {
		svc := &recordingService{}
		r := setup(svc)

		if _, err := call(t, r, pattern, `{"user":{"id":"U1","roles":["user"]},"id":5}`); err != nil {
			t.Fatalf("%s: %v", pattern, err)
		}
		if svc.lastID != 5 {
			t.Errorf("%s: expected id 5, got %d", pattern, svc.lastID)
		}

		_, err := call(t, r, pattern, `{"user":{"id":"U1","roles":["user"]},"id":0}`)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", pattern, err)
		}
	}
}

func TestUpdate_SeparatesIDFromChanges(t *testing.T) {
	svc := &recordingService{}
	_, err := call(t, setup(svc), PatternUpdate,
		`{"user":{"id":"U1","roles":["user"]},"product":{"id":9,"price":"2.50"}}`)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if svc.lastUpdate.ID != 9 || svc.lastUpdate.Name != nil {
		t.Errorf("unexpected update input: %+v", svc.lastUpdate)
	}
	if svc.lastUpdate.Price == nil || !svc.lastUpdate.Price.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("unexpected price: %v", svc.lastUpdate.Price)
	}
}

func TestServiceErrorsPropagate(t *testing.T) {
	svc := &recordingService{err: domain.NewNotFoundError(5, "already deleted")}
	_, err := call(t, setup(svc), PatternRemove, `{"user":{"id":"U1","roles":["user"]},"id":5}`)

	code, msg := MapError(zerolog.Nop())(err)
	if code != http.StatusNotFound || msg != "product with id 5, already deleted" {
		t.Fatalf("unexpected mapping: %d %q", code, msg)
	}
}

func TestMapError_HidesInternalErrors(t *testing.T) {
	code, msg := MapError(zerolog.Nop())(errors.New("socket closed"))
	if code != http.StatusInternalServerError || msg != "internal server error" {
		t.Fatalf("unexpected mapping: %d %q", code, msg)
	}
}
