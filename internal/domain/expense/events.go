package expense

import (
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// AggregateTypeExpense is the aggregate type for expense events
const AggregateTypeExpense = "Expense"

// EventTypeExpenseRecorded is raised when an expense is created
const EventTypeExpenseRecorded = "ExpenseRecorded"

// ExpenseRecordedEvent is raised when a new unreconciled expense is recorded
type ExpenseRecordedEvent struct {
	shared.BaseDomainEvent
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Tag    Tag             `json:"tag"`
}

// NewExpenseRecordedEvent creates an ExpenseRecordedEvent
func NewExpenseRecordedEvent(e *Expense) *ExpenseRecordedEvent {
	return &ExpenseRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseRecorded, AggregateTypeExpense, e.ID, e.InventoryID),
		Name:            e.Name,
		Amount:          e.Amount,
		Tag:             e.Tag,
	}
}

// EventType returns the event type name
func (e *ExpenseRecordedEvent) EventType() string {
	return EventTypeExpenseRecorded
}
