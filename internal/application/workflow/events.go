package workflow

import (
	"context"

	"github.com/stockflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PublishEvents publishes and clears the pending events of committed
// aggregates. Publish failures are logged; the transition is already durable.
func PublishEvents(ctx context.Context, bus shared.EventPublisher, log *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events := agg.GetDomainEvents()
		agg.ClearDomainEvents()
		if bus == nil || len(events) == 0 {
			continue
		}
		if err := bus.Publish(ctx, events...); err != nil && log != nil {
			log.Warn("Failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Int("event_count", len(events)),
				zap.Error(err),
			)
		}
	}
}
