package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// BalanceChangeReason identifies which workflow moved an inventory balance
type BalanceChangeReason string

const (
	BalanceChangeReportSettlement BalanceChangeReason = "REPORT_SETTLEMENT"
	BalanceChangeShipmentExpenses BalanceChangeReason = "SHIPMENT_EXPENSES"
)

// Inventory is a warehouse or shop together with its money ledger.
// Balances are mutated only by the terminal transitions of the report
// and shipment workflows.
type Inventory struct {
	shared.BaseAggregateRoot
	Name           string
	CurrentBalance decimal.Decimal // money available now
	TotalBalance   decimal.Decimal // lifetime accumulated money
	CashOnHand     decimal.Decimal
}

// NewInventory creates an inventory with an empty ledger
func NewInventory(name string) (*Inventory, error) {
	if name == "" {
		return nil, shared.InvalidInputf("inventory name cannot be empty")
	}
	return &Inventory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		CurrentBalance:    decimal.Zero,
		TotalBalance:      decimal.Zero,
		CashOnHand:        decimal.Zero,
	}, nil
}

// CoversFloor reports whether a claimed cash amount reaches the ledger floor.
// Cash on hand may exceed the current balance but never fall short of it.
func (i *Inventory) CoversFloor(currentMoney decimal.Decimal) bool {
	return currentMoney.GreaterThanOrEqual(i.CurrentBalance)
}

// ApplySettlement commits an accepted report's additional balance to the ledger
func (i *Inventory) ApplySettlement(reportID uuid.UUID, amount decimal.Decimal) {
	before := i.CurrentBalance
	i.CurrentBalance = i.CurrentBalance.Add(amount)
	i.TotalBalance = i.TotalBalance.Add(amount)
	i.IncrementVersion()

	i.AddDomainEvent(NewBalanceChangedEvent(i, BalanceChangeReportSettlement, reportID, before, amount))
}

// DeductShipmentExpenses removes the cost of an accepted shipment from the current balance
func (i *Inventory) DeductShipmentExpenses(shipmentID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.InvalidInputf("shipment expenses cannot be negative")
	}
	before := i.CurrentBalance
	i.CurrentBalance = i.CurrentBalance.Sub(amount)
	i.IncrementVersion()

	i.AddDomainEvent(NewBalanceChangedEvent(i, BalanceChangeShipmentExpenses, shipmentID, before, amount.Neg()))
	return nil
}
