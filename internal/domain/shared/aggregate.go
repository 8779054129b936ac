package shared

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is what services need from an aggregate after a command:
// its identity and the events the command raised
type AggregateRoot interface {
	GetID() uuid.UUID
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseEntity is identity plus timestamps, for records without a lifecycle
// of their own such as product units
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

// Touch bumps UpdatedAt without a version change
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// BaseAggregateRoot adds the optimistic-lock version and pending events.
// Version starts at 1 and every state change increments it.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	events []DomainEvent
}

// NewBaseAggregateRoot creates a root with a fresh ID at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	now := time.Now().UTC()
	return BaseAggregateRoot{
		BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Version:    1,
	}
}

// IncrementVersion records a state change
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.Touch()
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.events }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.events = nil }

// InventoryAggregateRoot is an aggregate owned by exactly one inventory.
// Reports, shipments, expenses and files are all scoped this way.
type InventoryAggregateRoot struct {
	BaseAggregateRoot
	InventoryID uuid.UUID
	CreatedBy   uuid.UUID
}

// NewInventoryAggregateRoot binds a new aggregate to its inventory and creator
func NewInventoryAggregateRoot(inventoryID, createdBy uuid.UUID) InventoryAggregateRoot {
	return InventoryAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		InventoryID:       inventoryID,
		CreatedBy:         createdBy,
	}
}

// BelongsTo reports whether the aggregate is owned by the given inventory
func (a *InventoryAggregateRoot) BelongsTo(inventoryID uuid.UUID) bool {
	return a.InventoryID == inventoryID
}
