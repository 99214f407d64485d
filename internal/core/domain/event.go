package domain

import "time"

// ProductEventType names a lifecycle event published after a mutation.
type ProductEventType string

const (
	EventProductCreated  ProductEventType = "product.created"
	EventProductUpdated  ProductEventType = "product.updated"
	EventProductRemoved  ProductEventType = "product.removed"
	EventProductRestored ProductEventType = "product.restored"
)

// ProductEvent is emitted once per successful mutation.
type ProductEvent struct {
	Type       ProductEventType `json:"type"`
	ProductID  int64            `json:"product_id"`
	ActorID    string           `json:"actor_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}
