// Package workflowtest provides recording doubles for workflow service tests.
package workflowtest

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// Publisher records every published event
type Publisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

// NewPublisher creates an empty Publisher
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish implements shared.EventPublisher
func (p *Publisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

// FailWith makes later Publish calls return err after recording
func (p *Publisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Events returns a copy of the recorded events
func (p *Publisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the recorded event types in publish order
func (p *Publisher) Types() []string {
	events := p.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

// OfType returns the recorded events of one type
func (p *Publisher) OfType(eventType string) []shared.DomainEvent {
	var out []shared.DomainEvent
	for _, e := range p.Events() {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets everything recorded so far
func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// Transition is one recorded transition measurement
type Transition struct {
	Aggregate string
	Action    string
	ToStatus  string
}

// Recorder captures workflow measurements
type Recorder struct {
	mu          sync.Mutex
	Transitions []Transition
	Deltas      []decimal.Decimal
}

// RecordTransition implements workflow.Recorder
func (r *Recorder) RecordTransition(_ context.Context, aggregate, action, toStatus string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Transitions = append(r.Transitions, Transition{aggregate, action, toStatus})
}

// RecordLedgerDelta implements workflow.Recorder
func (r *Recorder) RecordLedgerDelta(_ context.Context, _ string, delta decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deltas = append(r.Deltas, delta)
}

// Handler is a shared.EventHandler that records what it receives
type Handler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
}

// NewHandler subscribes to the given event types, or all when none are given
func NewHandler(eventTypes ...string) *Handler {
	return &Handler{types: eventTypes}
}

// EventTypes implements shared.EventHandler
func (h *Handler) EventTypes() []string {
	return h.types
}

// Handle implements shared.EventHandler
func (h *Handler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// FailWith makes Handle return err
func (h *Handler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Count returns how many events were handled
func (h *Handler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// Handled returns a copy of the handled events
func (h *Handler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}
