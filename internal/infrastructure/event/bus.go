// Package event dispatches committed domain events to in-process handlers.
package event

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/stockflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers events synchronously to subscribed handlers.
// A failing or panicking handler is logged and never blocks the others.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool

	deliveries  DeliveryStore
	deliveryTTL time.Duration
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithDeliveryStore drops repeated deliveries of the same event to the same handler
func WithDeliveryStore(store DeliveryStore, ttl time.Duration) BusOption {
	return func(b *InMemoryEventBus) {
		b.deliveries = store
		b.deliveryTTL = ttl
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry:    NewHandlerRegistry(),
		logger:      logger,
		deliveryTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.running.Store(true)
	return b
}

// Publish hands every event to its handlers. It only fails when the bus is stopped.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		return fmt.Errorf("event bus is stopped")
	}
	for _, ev := range events {
		for _, h := range b.registry.Handlers(ev.EventType()) {
			if !b.firstDelivery(ctx, h, ev) {
				continue
			}
			if err := b.dispatch(ctx, h, ev); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (b *InMemoryEventBus) firstDelivery(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) bool {
	if b.deliveries == nil {
		return true
	}
	// keyed per handler type so every instance agrees on the key
	key := fmt.Sprintf("%s:%T", ev.EventID(), h)
	first, err := b.deliveries.MarkDelivered(ctx, key, b.deliveryTTL)
	if err != nil {
		// deliver anyway: a duplicate notification beats a lost one
		b.logger.Warn("delivery store unavailable",
			zap.String("event_id", ev.EventID().String()),
			zap.Error(err),
		)
		return true
	}
	if !first {
		b.logger.Debug("duplicate event delivery skipped", zap.String("key", key))
	}
	return first
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

// Subscribe registers a handler, defaulting to the types it declares
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start resumes delivery
func (b *InMemoryEventBus) Start(context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop rejects further publishes
func (b *InMemoryEventBus) Stop(context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
