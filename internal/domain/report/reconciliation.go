package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
)

var hundred = decimal.NewFromInt(100)

// Count is a worker-submitted stock count for one product unit
type Count struct {
	ProductUnitID uuid.UUID
	Quantity      decimal.Decimal
}

// Figures are the derived financial fields of a report
type Figures struct {
	ExpectedSoldMoneyAmount  decimal.Decimal
	TotalExpensesMoneyAmount decimal.Decimal
	NetMoneyAmount           decimal.Decimal
	RealNetMoneyAmount       decimal.Decimal
	BrokenMoneyAmount        decimal.Decimal
	BrokenRate               decimal.Decimal
}

// ReconcileInput carries everything the computation reads
type ReconcileInput struct {
	Units          []inventory.ProductUnit // every unit of the inventory
	Counts         []Count                 // one count per unit
	TotalExpenses  decimal.Decimal
	CurrentMoney   decimal.Decimal // cash the worker claims to hold
	OpeningBalance decimal.Decimal // inventory current balance before this report
}

// Reconcile validates a stock count submission and derives the report
// figures and line items.
//
// Per unit expected revenue is price*(original-counted), floored at zero so a
// count above the stored quantity never offsets losses elsewhere.
func Reconcile(in ReconcileInput) (Figures, []LineItem, error) {
	counted, err := matchCounts(in.Units, in.Counts)
	if err != nil {
		return Figures{}, nil, err
	}
	if in.CurrentMoney.LessThan(in.OpeningBalance) {
		return Figures{}, nil, shared.InvalidInputf(
			"current money amount %s cannot be less than the inventory balance %s",
			in.CurrentMoney.String(), in.OpeningBalance.String())
	}

	expected := decimal.Zero
	items := make([]LineItem, 0, len(in.Units))
	for i := range in.Units {
		u := &in.Units[i]
		qty := counted[u.ID]

		lost := u.UnitPrice.Mul(u.Quantity).Sub(u.UnitPrice.Mul(qty))
		expected = expected.Add(decimal.Max(lost, decimal.Zero))

		sold := u.Quantity.Sub(qty)
		items = append(items, LineItem{
			ID:               uuid.New(),
			ProductUnitID:    u.ID,
			ProductName:      u.ProductName,
			OriginalQuantity: u.Quantity,
			Quantity:         qty,
			PiecesPerPallet:  u.PiecesPerPallet,
			Pallets:          u.Pallets(qty),
			UnitPrice:        u.UnitPrice,
			TotalPrice:       u.UnitPrice.Mul(qty),
			SoldUnits:        sold,
			SoldUnitsAmount:  sold.Mul(u.UnitPrice),
		})
	}

	net := expected.Sub(in.TotalExpenses)
	realNet := in.CurrentMoney.Sub(in.OpeningBalance)
	broken := net.Sub(realNet)

	return Figures{
		ExpectedSoldMoneyAmount:  expected,
		TotalExpensesMoneyAmount: in.TotalExpenses,
		NetMoneyAmount:           net,
		RealNetMoneyAmount:       realNet,
		BrokenMoneyAmount:        broken,
		BrokenRate:               BrokenRate(broken, expected),
	}, items, nil
}

// BrokenRate expresses broken money as a percentage of expected revenue,
// zero when nothing was expected to be sold.
func BrokenRate(broken, expected decimal.Decimal) decimal.Decimal {
	if expected.IsZero() {
		return decimal.Zero
	}
	return broken.Mul(hundred).Div(expected).Round(4)
}

// matchCounts checks that counts cover exactly the inventory's unit set
func matchCounts(units []inventory.ProductUnit, counts []Count) (map[uuid.UUID]decimal.Decimal, error) {
	byID := make(map[uuid.UUID]decimal.Decimal, len(counts))
	for _, c := range counts {
		if _, dup := byID[c.ProductUnitID]; dup {
			return nil, shared.InvalidInputf("product unit %s is listed more than once", c.ProductUnitID)
		}
		if c.Quantity.IsNegative() {
			return nil, shared.InvalidInputf("quantity for product unit %s cannot be negative", c.ProductUnitID)
		}
		byID[c.ProductUnitID] = c.Quantity
	}
	for _, u := range units {
		if _, ok := byID[u.ID]; !ok {
			return nil, shared.NotFoundf("product unit %s not found in the list provided", u.ID)
		}
	}
	if len(units) != len(counts) {
		return nil, shared.NotFoundf("inventory has %d product units, but %d were provided", len(units), len(counts))
	}
	return byID, nil
}
