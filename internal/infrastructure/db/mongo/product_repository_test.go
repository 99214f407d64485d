package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/99minutos/product-catalog/internal/core/domain"
	"github.com/99minutos/product-catalog/internal/core/ports"
)

func TestDocumentMapping_RoundTripsPrice(t *testing.T) {
	deleted := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	updater := "U2"
	p := &domain.Product{
		ID:              7,
		Name:            "Widget",
		Price:           decimal.RequireFromString("19.9900"),
		CreatedAt:       deleted.Add(-time.Hour),
		DeletedAt:       &deleted,
		CreatedByID:     "U1",
		LastUpdatedByID: &updater,
	}

	doc, err := toDocument(p)
	if err != nil {
		t.Fatalf("toDocument: %v", err)
	}
	got, err := fromDocument(doc)
	if err != nil {
		t.Fatalf("fromDocument: %v", err)
	}

	if !got.Price.Equal(p.Price) {
		t.Errorf("price: expected %s, got %s", p.Price, got.Price)
	}
	if got.ID != 7 || got.Name != "Widget" || got.CreatedByID != "U1" {
		t.Errorf("unexpected product: %+v", got)
	}
	if got.DeletedAt == nil || !got.DeletedAt.Equal(deleted) {
		t.Errorf("deleted_at: expected %s, got %v", deleted, got.DeletedAt)
	}
	if got.LastUpdatedByID == nil || *got.LastUpdatedByID != "U2" {
		t.Errorf("last_updated_by_id: expected U2, got %v", got.LastUpdatedByID)
	}
}

func TestVisibilityFilter(t *testing.T) {
	if f := visibilityFilter(ports.ProductFilter{IncludeDeleted: true}); len(f) != 0 {
		t.Errorf("admins must see every product, got filter %v", f)
	}
	f := visibilityFilter(ports.ProductFilter{})
	if v, ok := f["deleted_at"]; !ok || v != nil {
		t.Errorf("expected deleted_at: nil filter, got %v", f)
	}
}

func TestUpdateSet(t *testing.T) {
	name := "Gadget"
	price := decimal.RequireFromString("5.5")
	now := time.Now().UTC()

	tests := []struct {
		name    string
		changes ports.ProductChanges
		check   func(t *testing.T, set bson.M)
	}{
		{
			name:    "update writes only given fields",
			changes: ports.ProductChanges{Name: &name, LastUpdatedByID: "U1"},
			check: func(t *testing.T, set bson.M) {
				if set["name"] != "Gadget" || set["last_updated_by_id"] != "U1" {
					t.Errorf("unexpected set: %v", set)
				}
				if _, ok := set["price"]; ok {
					t.Error("price must not be written")
				}
				if _, ok := set["deleted_at"]; ok {
					t.Error("deleted_at must not be written")
				}
			},
		},
		{
			name:    "price is stored as decimal128",
			changes: ports.ProductChanges{Price: &price, LastUpdatedByID: "U1"},
			check: func(t *testing.T, set bson.M) {
				if _, ok := set["price"]; !ok {
					t.Fatal("price missing")
				}
			},
		},
		{
			name:    "remove sets deleted_at",
			changes: ports.ProductChanges{DeletedAt: &now, LastUpdatedByID: "U1"},
			check: func(t *testing.T, set bson.M) {
				if set["deleted_at"] != now {
					t.Errorf("expected deleted_at %v, got %v", now, set["deleted_at"])
				}
			},
		},
		{
			name:    "restore clears deleted_at",
			changes: ports.ProductChanges{ClearDeletedAt: true, LastUpdatedByID: "U1"},
			check: func(t *testing.T, set bson.M) {
				v, ok := set["deleted_at"]
				if !ok || v != nil {
					t.Errorf("expected deleted_at: nil, got %v", set)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := updateSet(tt.changes)
			if err != nil {
				t.Fatalf("updateSet: %v", err)
			}
			tt.check(t, set)
		})
	}
}
