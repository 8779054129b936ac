package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// AggregateTypeInventory is the aggregate type for inventory events
const AggregateTypeInventory = "Inventory"

// EventTypeBalanceChanged is raised whenever the ledger balance moves
const EventTypeBalanceChanged = "InventoryBalanceChanged"

// BalanceChangedEvent records a ledger movement and its source workflow
type BalanceChangedEvent struct {
	shared.BaseDomainEvent
	Reason          BalanceChangeReason `json:"reason"`
	SourceID        uuid.UUID           `json:"source_id"`
	Delta           decimal.Decimal     `json:"delta"`
	BalanceBefore   decimal.Decimal     `json:"balance_before"`
	BalanceAfter    decimal.Decimal     `json:"balance_after"`
	TotalBalanceNow decimal.Decimal     `json:"total_balance"`
}

// NewBalanceChangedEvent creates a BalanceChangedEvent
func NewBalanceChangedEvent(inv *Inventory, reason BalanceChangeReason, sourceID uuid.UUID, before, delta decimal.Decimal) *BalanceChangedEvent {
	return &BalanceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBalanceChanged, AggregateTypeInventory, inv.ID, inv.ID),
		Reason:          reason,
		SourceID:        sourceID,
		Delta:           delta,
		BalanceBefore:   before,
		BalanceAfter:    inv.CurrentBalance,
		TotalBalanceNow: inv.TotalBalance,
	}
}

// EventType returns the event type name
func (e *BalanceChangedEvent) EventType() string {
	return EventTypeBalanceChanged
}
