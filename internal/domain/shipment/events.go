package shipment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// AggregateTypeShipment is the aggregate type for shipment events
const AggregateTypeShipment = "Shipment"

// Event type constants
const (
	EventTypeShipmentCreated         = "ShipmentCreated"
	EventTypeShipmentSubmitted       = "ShipmentSubmittedForReview"
	EventTypeShipmentUpdateRequested = "ShipmentUpdateRequested"
	EventTypeShipmentAccepted        = "ShipmentAccepted"
)

var actionEventTypes = map[Action]string{
	ActionSubmitForReview: EventTypeShipmentSubmitted,
	ActionRequestUpdate:   EventTypeShipmentUpdateRequested,
	ActionAccept:          EventTypeShipmentAccepted,
}

// ShipmentCreatedEvent is raised when an admin plans a shipment
type ShipmentCreatedEvent struct {
	shared.BaseDomainEvent
	Title         string          `json:"title"`
	AdminID       uuid.UUID       `json:"admin_id"`
	ItemizedTotal decimal.Decimal `json:"itemized_total"`
}

// NewShipmentCreatedEvent creates a ShipmentCreatedEvent
func NewShipmentCreatedEvent(s *Shipment) *ShipmentCreatedEvent {
	return &ShipmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentCreated, AggregateTypeShipment, s.ID, s.InventoryID),
		Title:           s.Title,
		AdminID:         s.CreatedBy,
		ItemizedTotal:   s.ItemizedTotal(),
	}
}

// EventType returns the event type name
func (e *ShipmentCreatedEvent) EventType() string {
	return EventTypeShipmentCreated
}

// ShipmentStatusChangedEvent is raised on every shipment transition
type ShipmentStatusChangedEvent struct {
	shared.BaseDomainEvent
	Action        Action          `json:"action"`
	FromStatus    Status          `json:"from_status"`
	ToStatus      Status          `json:"to_status"`
	ActorID       uuid.UUID       `json:"actor_id"`
	Reason        string          `json:"reason,omitempty"`
	ExpensesTotal decimal.Decimal `json:"expenses_total"`
}

// NewShipmentStatusChangedEvent creates a ShipmentStatusChangedEvent typed after the action
func NewShipmentStatusChangedEvent(s *Shipment, action Action, from Status, actor uuid.UUID, reason string) *ShipmentStatusChangedEvent {
	eventType, ok := actionEventTypes[action]
	if !ok {
		eventType = string(action)
	}
	return &ShipmentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeShipment, s.ID, s.InventoryID),
		Action:          action,
		FromStatus:      from,
		ToStatus:        s.Status,
		ActorID:         actor,
		Reason:          reason,
		ExpensesTotal:   s.Costs.Total(),
	}
}
