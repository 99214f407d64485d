package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/product-catalog/internal/core/domain"
)

// LoggingPublisher records events in the log. Used when no brokers are configured.
type LoggingPublisher struct {
	log zerolog.Logger
}

func NewLoggingPublisher(log zerolog.Logger) *LoggingPublisher {
	return &LoggingPublisher{log: log}
}

func (p *LoggingPublisher) Publish(_ context.Context, event domain.ProductEvent) error {
	p.log.Info().
		Str("event_type", string(event.Type)).
		Int64("product_id", event.ProductID).
		Str("actor_id", event.ActorID).
		Time("occurred_at", event.OccurredAt).
		Msg("product event")
	return nil
}
