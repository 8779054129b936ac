package shipment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/expense"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
)

// LineItem is a delivered quantity of one product unit
type LineItem struct {
	ID              uuid.UUID
	ShipmentID      uuid.UUID
	ProductUnitID   uuid.UUID
	Quantity        decimal.Decimal
	PiecesPerPallet decimal.Decimal
	Pallets         decimal.Decimal
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
}

// ItemizedExpense is an upfront cost entered by the admin when planning a shipment
type ItemizedExpense struct {
	ID          uuid.UUID
	ShipmentID  uuid.UUID
	Name        string
	Amount      decimal.Decimal
	Description string
	Tag         expense.Tag
}

// Delivery is a worker-reported delivered quantity
type Delivery struct {
	ProductUnitID uuid.UUID
	Quantity      decimal.Decimal
}

// Costs are the three expense categories reported with a delivery
type Costs struct {
	ShipmentCard     decimal.Decimal
	ClarkInstallment decimal.Decimal
	Other            decimal.Decimal
}

// Total sums the three categories
func (c Costs) Total() decimal.Decimal {
	return c.ShipmentCard.Add(c.ClarkInstallment).Add(c.Other)
}

func (c Costs) validate() error {
	if c.ShipmentCard.IsNegative() || c.ClarkInstallment.IsNegative() || c.Other.IsNegative() {
		return shared.InvalidInputf("shipment expenses cannot be negative")
	}
	return nil
}

// Shipment replenishes one inventory. CreatedBy is the planning admin.
type Shipment struct {
	shared.InventoryAggregateRoot
	Title         string
	Status        Status
	Costs         Costs
	ReasonMessage string
	SubmittedBy   *uuid.UUID
	AcceptedAt    *time.Time
	Items         []LineItem
	Expenses      []ItemizedExpense
}

// NewShipment plans a shipment in PENDING
func NewShipment(inventoryID, adminID uuid.UUID, title string, expenses []ItemizedExpense) (*Shipment, error) {
	if inventoryID == uuid.Nil {
		return nil, shared.InvalidInputf("inventory ID cannot be empty")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.InvalidInputf("shipment title cannot be empty")
	}
	s := &Shipment{
		InventoryAggregateRoot: shared.NewInventoryAggregateRoot(inventoryID, adminID),
		Title:                  title,
		Status:                 StatusPending,
		Costs:                  Costs{decimal.Zero, decimal.Zero, decimal.Zero},
	}
	if err := s.setExpenses(expenses); err != nil {
		return nil, err
	}
	s.AddDomainEvent(NewShipmentCreatedEvent(s))
	return s, nil
}

func (s *Shipment) setExpenses(expenses []ItemizedExpense) error {
	out := make([]ItemizedExpense, len(expenses))
	for i, e := range expenses {
		if strings.TrimSpace(e.Name) == "" {
			return shared.InvalidInputf("shipment expense name cannot be empty")
		}
		if e.Amount.IsNegative() {
			return shared.InvalidInputf("shipment expense amount cannot be negative")
		}
		if e.Tag == "" {
			e.Tag = expense.TagOther
		}
		if !e.Tag.IsValid() {
			return shared.InvalidInputf("unknown expense tag %q", e.Tag)
		}
		e.ID = uuid.New()
		e.ShipmentID = s.ID
		out[i] = e
	}
	s.Expenses = out
	return nil
}

// ItemizedTotal sums the upfront itemized expenses
func (s *Shipment) ItemizedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// IsActive reports whether the shipment still blocks a new one for its inventory
func (s *Shipment) IsActive() bool {
	return s.Status.IsActive()
}

func (s *Shipment) transition(action Action, actor uuid.UUID, reason string) error {
	from := s.Status
	to, err := Transitions.Next(from, action)
	if err != nil {
		return err
	}
	s.Status = to
	s.IncrementVersion()
	s.AddDomainEvent(NewShipmentStatusChangedEvent(s, action, from, actor, reason))
	return nil
}

// Update retitles the shipment and, when expenses is non-nil, replaces the itemized expenses
func (s *Shipment) Update(title string, expenses []ItemizedExpense) error {
	if !s.IsActive() {
		return shared.NewDomainError(shared.CodeInvalidState, "an accepted shipment cannot be changed")
	}
	if t := strings.TrimSpace(title); t != "" {
		s.Title = t
	}
	if expenses != nil {
		if err := s.setExpenses(expenses); err != nil {
			return err
		}
	}
	s.IncrementVersion()
	return nil
}

// SubmitForReview records delivered quantities and the three expense totals
func (s *Shipment) SubmitForReview(workerID uuid.UUID, items []LineItem, costs Costs) error {
	if err := costs.validate(); err != nil {
		return err
	}
	if err := s.transition(ActionSubmitForReview, workerID, ""); err != nil {
		return err
	}
	s.Items = make([]LineItem, len(items))
	for i, item := range items {
		item.ShipmentID = s.ID
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		s.Items[i] = item
	}
	s.Costs = costs
	s.SubmittedBy = &workerID
	return nil
}

// RequestUpdate sends the submission back to the worker
func (s *Shipment) RequestUpdate(adminID uuid.UUID, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return shared.InvalidInputf("review message is required")
	}
	if err := s.transition(ActionRequestUpdate, adminID, message); err != nil {
		return err
	}
	s.ReasonMessage = message
	return nil
}

// Accept closes the shipment and returns the amount to deduct from the inventory balance.
// The caller must apply line items to product units in the same transaction.
func (s *Shipment) Accept(adminID uuid.UUID) (decimal.Decimal, error) {
	if err := s.transition(ActionAccept, adminID, ""); err != nil {
		return decimal.Zero, err
	}
	now := time.Now().UTC()
	s.AcceptedAt = &now
	return s.Costs.Total(), nil
}

// BuildLineItems validates deliveries against the product units they reference
func BuildLineItems(inventoryID uuid.UUID, units []inventory.ProductUnit, deliveries []Delivery) ([]LineItem, error) {
	idx := inventory.IndexByID(units)
	seen := make(map[uuid.UUID]bool, len(deliveries))
	items := make([]LineItem, 0, len(deliveries))
	for _, d := range deliveries {
		if seen[d.ProductUnitID] {
			return nil, shared.InvalidInputf("product unit %s is listed more than once", d.ProductUnitID)
		}
		seen[d.ProductUnitID] = true
		if !d.Quantity.IsPositive() {
			return nil, shared.InvalidInputf("delivered quantity for product unit %s must be positive", d.ProductUnitID)
		}
		u, ok := idx[d.ProductUnitID]
		if !ok {
			return nil, shared.NotFoundf("product unit with ID %s not found", d.ProductUnitID)
		}
		if u.InventoryID != inventoryID {
			return nil, shared.InvalidInputf("product unit with ID %s does not belong to the same inventory", d.ProductUnitID)
		}
		pallets := u.Pallets(d.Quantity)
		items = append(items, LineItem{
			ID:              uuid.New(),
			ProductUnitID:   u.ID,
			Quantity:        d.Quantity,
			PiecesPerPallet: u.PiecesPerPallet,
			Pallets:         pallets,
			UnitPrice:       u.UnitPrice,
			TotalPrice:      pallets.Mul(u.UnitPrice),
		})
	}
	return items, nil
}
