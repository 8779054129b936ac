package expense

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestParseTag(t *testing.T) {
	tag, err := ParseTag("")
	require.NoError(t, err)
	assert.Equal(t, TagOther, tag)

	tag, err = ParseTag("salary")
	require.NoError(t, err)
	assert.Equal(t, TagSalary, tag)

	_, err = ParseTag("gifts")
	requireCode(t, err, shared.CodeInvalidInput)
}

func TestNewExpense(t *testing.T) {
	inventoryID := uuid.New()
	e, err := NewExpense(inventoryID, uuid.New(), " Rent ", decimal.NewFromInt(300), TagRent, "monthly")
	require.NoError(t, err)

	assert.Equal(t, "Rent", e.Name)
	assert.False(t, e.IsLocked())
	require.Len(t, e.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeExpenseRecorded, e.GetDomainEvents()[0].EventType())

	tests := []struct {
		name   string
		inv    uuid.UUID
		title  string
		amount decimal.Decimal
		tag    Tag
	}{
		{"no inventory", uuid.Nil, "Rent", decimal.NewFromInt(1), TagRent},
		{"blank name", inventoryID, " ", decimal.NewFromInt(1), TagRent},
		{"zero amount", inventoryID, "Rent", decimal.Zero, TagRent},
		{"bad tag", inventoryID, "Rent", decimal.NewFromInt(1), Tag("X")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExpense(tt.inv, uuid.New(), tt.title, tt.amount, tt.tag, "")
			requireCode(t, err, shared.CodeInvalidInput)
		})
	}
}

func TestExpense_Lifecycle(t *testing.T) {
	e, err := NewExpense(uuid.New(), uuid.New(), "Fuel", decimal.NewFromInt(20), TagOther, "")
	require.NoError(t, err)

	require.NoError(t, e.Update("Diesel", decimal.NewFromInt(25), TagShipmentCard, "truck"))
	assert.Equal(t, "Diesel", e.Name)
	assert.Equal(t, 2, e.Version)

	reportID := uuid.New()
	require.NoError(t, e.LinkTo(reportID))
	assert.True(t, e.IsLocked())
	requireCode(t, e.Update("x", decimal.NewFromInt(1), TagOther, ""), shared.CodeConflict)
	requireCode(t, e.EnsureDeletable(), shared.CodeConflict)

	e.Applied = true
	requireCode(t, e.LinkTo(uuid.New()), shared.CodeConflict)
	assert.Equal(t, &reportID, e.ReportID)
}

func TestExpense_RelinkBeforeApply(t *testing.T) {
	e, err := NewExpense(uuid.New(), uuid.New(), "Fuel", decimal.NewFromInt(20), TagOther, "")
	require.NoError(t, err)

	first, second := uuid.New(), uuid.New()
	require.NoError(t, e.LinkTo(first))
	require.NoError(t, e.LinkTo(second))
	assert.Equal(t, &second, e.ReportID)
}

func TestTotalAndIDs(t *testing.T) {
	a := Expense{Amount: decimal.RequireFromString("10.25")}
	a.ID = uuid.New()
	b := Expense{Amount: decimal.RequireFromString("4.75")}
	b.ID = uuid.New()

	assert.True(t, decimal.NewFromInt(15).Equal(Total([]Expense{a, b})))
	assert.True(t, Total(nil).IsZero())
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, IDs([]Expense{a, b}))
}
