package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// ProductUnit is the stocked representation of a product inside one inventory.
// Quantity is the number of pieces on hand as of the last accepted report
// or shipment; PiecesPerPallet describes batch sizing.
type ProductUnit struct {
	shared.BaseEntity
	InventoryID     uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	UnitPrice       decimal.Decimal
	Quantity        decimal.Decimal
	PiecesPerPallet decimal.Decimal
}

// Pallets converts a piece count to pallets, zero when batch sizing is unknown
func (u *ProductUnit) Pallets(pieces decimal.Decimal) decimal.Decimal {
	if u.PiecesPerPallet.IsZero() {
		return decimal.Zero
	}
	return pieces.Div(u.PiecesPerPallet).Round(4)
}

// ApplyCount settles a stock count taken when the unit held original pieces.
// The difference is applied to the current quantity, so deliveries accepted
// after the count was taken are kept.
func (u *ProductUnit) ApplyCount(original, counted decimal.Decimal) error {
	if counted.IsNegative() {
		return shared.InvalidInputf("counted quantity for product unit %s cannot be negative", u.ID)
	}
	next := u.Quantity.Add(counted.Sub(original))
	if next.IsNegative() {
		return shared.InvalidInputf("product unit %s would hold %s pieces after the count", u.ID, next)
	}
	u.Quantity = next
	u.Touch()
	return nil
}

// AddDelivered increments the on-hand quantity by a delivered amount
func (u *ProductUnit) AddDelivered(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.InvalidInputf("delivered quantity for product unit %s cannot be negative", u.ID)
	}
	u.Quantity = u.Quantity.Add(quantity)
	u.Touch()
	return nil
}

// IndexByID builds a lookup of product units keyed by ID
func IndexByID(units []ProductUnit) map[uuid.UUID]*ProductUnit {
	idx := make(map[uuid.UUID]*ProductUnit, len(units))
	for i := range units {
		idx[units[i].ID] = &units[i]
	}
	return idx
}
