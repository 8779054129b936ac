package expense

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// Tag categorises an expense
type Tag string

const (
	TagShipmentCard     Tag = "SHIPMENT_CARD"
	TagClarkInstallment Tag = "CLARK_INSTALLMENT"
	TagSalary           Tag = "SALARY"
	TagRent             Tag = "RENT"
	TagUtilities        Tag = "UTILITIES"
	TagOther            Tag = "OTHER"
)

// IsValid checks if the tag is known
func (t Tag) IsValid() bool {
	switch t {
	case TagShipmentCard, TagClarkInstallment, TagSalary, TagRent, TagUtilities, TagOther:
		return true
	default:
		return false
	}
}

// ParseTag returns the tag for a string, defaulting to OTHER when empty
func ParseTag(s string) (Tag, error) {
	if s == "" {
		return TagOther, nil
	}
	t := Tag(strings.ToUpper(s))
	if !t.IsValid() {
		return "", shared.InvalidInputf("unknown expense tag %q", s)
	}
	return t, nil
}

// Expense is a cost recorded against an inventory. It starts unreconciled,
// is linked to an in-progress report when that report is submitted, and
// becomes applied once the report is accepted.
type Expense struct {
	shared.InventoryAggregateRoot
	Name        string
	Description string
	Amount      decimal.Decimal
	Tag         Tag
	ReportID    *uuid.UUID
	Applied     bool
}

// NewExpense creates an unreconciled expense
func NewExpense(inventoryID, userID uuid.UUID, name string, amount decimal.Decimal, tag Tag, description string) (*Expense, error) {
	if inventoryID == uuid.Nil {
		return nil, shared.InvalidInputf("inventory ID cannot be empty")
	}
	if err := validate(name, amount, tag); err != nil {
		return nil, err
	}
	e := &Expense{
		InventoryAggregateRoot: shared.NewInventoryAggregateRoot(inventoryID, userID),
		Name:                   strings.TrimSpace(name),
		Description:            description,
		Amount:                 amount,
		Tag:                    tag,
	}
	e.AddDomainEvent(NewExpenseRecordedEvent(e))
	return e, nil
}

func validate(name string, amount decimal.Decimal, tag Tag) error {
	if strings.TrimSpace(name) == "" {
		return shared.InvalidInputf("expense name cannot be empty")
	}
	if !amount.IsPositive() {
		return shared.InvalidInputf("expense amount must be positive")
	}
	if !tag.IsValid() {
		return shared.InvalidInputf("unknown expense tag %q", tag)
	}
	return nil
}

// IsLocked reports whether the expense already takes part in a report
func (e *Expense) IsLocked() bool {
	return e.ReportID != nil || e.Applied
}

// Update changes the editable fields of an unreconciled expense
func (e *Expense) Update(name string, amount decimal.Decimal, tag Tag, description string) error {
	if e.IsLocked() {
		return shared.Conflictf("expense %s is linked to a report and can no longer be changed", e.ID)
	}
	if err := validate(name, amount, tag); err != nil {
		return err
	}
	e.Name = strings.TrimSpace(name)
	e.Amount = amount
	e.Tag = tag
	e.Description = description
	e.IncrementVersion()
	return nil
}

// EnsureDeletable rejects deletion of an expense that a report already counts
func (e *Expense) EnsureDeletable() error {
	if e.IsLocked() {
		return shared.Conflictf("expense %s is linked to a report and cannot be deleted", e.ID)
	}
	return nil
}

// LinkTo provisionally attaches the expense to an in-progress report
func (e *Expense) LinkTo(reportID uuid.UUID) error {
	if e.Applied {
		return shared.Conflictf("expense %s is already applied", e.ID)
	}
	e.ReportID = &reportID
	e.Touch()
	return nil
}

// Total sums the amounts of a set of expenses
func Total(expenses []Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// IDs returns the IDs of a set of expenses
func IDs(expenses []Expense) []uuid.UUID {
	ids := make([]uuid.UUID, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	return ids
}
