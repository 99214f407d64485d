package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProductState represents the lifecycle state of a product.
type ProductState string

const (
	StateActive  ProductState = "active"
	StateDeleted ProductState = "deleted"
)

// LifecycleAction is a mutation that may be applied to an existing product.
type LifecycleAction string

const (
	ActionUpdate  LifecycleAction = "update"
	ActionRemove  LifecycleAction = "remove"
	ActionRestore LifecycleAction = "restore"
)

// allowedActions defines the soft-delete state machine. Update is a self-loop
// on StateActive; there is no terminal state.
var allowedActions = map[ProductState][]LifecycleAction{
	StateActive:  {ActionUpdate, ActionRemove},
	StateDeleted: {ActionRestore},
}

// Allows reports whether action may be applied to a product in state s.
func (s ProductState) Allows(action LifecycleAction) bool {
	for _, allowed := range allowedActions[s] {
		if allowed == action {
			return true
		}
	}
	return false
}

var ErrProductNotFound = errors.New("product not found")
var ErrInvalidInput = errors.New("invalid input")

// NotFoundError is the single error class for every product that is absent,
// invisible to the caller, or in the wrong lifecycle state. It matches
// ErrProductNotFound with errors.Is.
type NotFoundError struct {
	ID     int64
	Reason string
}

func NewNotFoundError(id int64, reason string) *NotFoundError {
	return &NotFoundError{ID: id, Reason: reason}
}

func (e *NotFoundError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("product with id %d not found", e.ID)
	}
	return fmt.Sprintf("product with id %d, %s", e.ID, e.Reason)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// Product is the catalog aggregate. DeletedAt is nil exactly while the
// product is active.
type Product struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	CreatedAt       time.Time       `json:"created_at"`
	DeletedAt       *time.Time      `json:"deleted_at"`
	CreatedByID     string          `json:"created_by_id"`
	LastUpdatedByID *string         `json:"last_updated_by_id"`
}

// State derives the lifecycle state from the soft-delete timestamp.
func (p *Product) State() ProductState {
	if p.DeletedAt != nil {
		return StateDeleted
	}
	return StateActive
}

func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}
