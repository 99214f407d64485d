package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestProductState_Allows(t *testing.T) {
	tests := []struct {
		state  ProductState
		action LifecycleAction
		want   bool
	}{
		{StateActive, ActionUpdate, true},
		{StateActive, ActionRemove, true},
		{StateActive, ActionRestore, false},
		{StateDeleted, ActionUpdate, false},
		{StateDeleted, ActionRemove, false},
		{StateDeleted, ActionRestore, true},
	}

	for _, tt := range tests {
		if got := tt.state.Allows(tt.action); got != tt.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tt.state, tt.action, got, tt.want)
		}
	}
}

func TestProduct_State(t *testing.T) {
	p := &Product{ID: 1}
	if p.State() != StateActive || p.IsDeleted() {
		t.Fatalf("new product must be active, got %s", p.State())
	}

	now := time.Now()
	p.DeletedAt = &now
	if p.State() != StateDeleted || !p.IsDeleted() {
		t.Fatalf("product with deleted_at must be deleted, got %s", p.State())
	}
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("update: %w", NewNotFoundError(7, "already deleted"))
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatal("NotFoundError must match ErrProductNotFound")
	}
	if got := NewNotFoundError(7, "already deleted").Error(); got != "product with id 7, already deleted" {
		t.Errorf("unexpected message: %q", got)
	}
	if got := NewNotFoundError(3, "").Error(); got != "product with id 3 not found" {
		t.Errorf("unexpected message: %q", got)
	}
}
