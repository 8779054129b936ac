package report

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReport(t *testing.T) *Report {
	t.Helper()
	r, err := NewReport(uuid.New(), uuid.New(), " March count ", d("140"), Figures{
		ExpectedSoldMoneyAmount: d("50"),
		NetMoneyAmount:          d("50"),
		RealNetMoneyAmount:      d("40"),
		BrokenMoneyAmount:       d("10"),
		BrokenRate:              d("20"),
	}, []LineItem{{ProductUnitID: uuid.New(), Quantity: d("15")}})
	require.NoError(t, err)
	r.ClearDomainEvents()
	return r
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestNewReport(t *testing.T) {
	t.Run("starts in review", func(t *testing.T) {
		inventoryID, workerID := uuid.New(), uuid.New()
		r, err := NewReport(inventoryID, workerID, "  Weekly  ", d("10"), Figures{}, []LineItem{{ProductUnitID: uuid.New()}})
		require.NoError(t, err)

		assert.Equal(t, StatusInReview, r.Status)
		assert.Equal(t, "Weekly", r.Title)
		assert.Equal(t, workerID, r.CreatedBy)
		assert.True(t, r.BelongsTo(inventoryID))
		require.Len(t, r.Items, 1)
		assert.Equal(t, r.ID, r.Items[0].ReportID)
		assert.NotEqual(t, uuid.Nil, r.Items[0].ID)

		events := r.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeReportSubmitted, events[0].EventType())
		assert.Equal(t, inventoryID, events[0].InventoryID())
	})

	t.Run("requires inventory and worker", func(t *testing.T) {
		_, err := NewReport(uuid.Nil, uuid.New(), "", d("1"), Figures{}, nil)
		requireCode(t, err, shared.CodeInvalidInput)
		_, err = NewReport(uuid.New(), uuid.Nil, "", d("1"), Figures{}, nil)
		requireCode(t, err, shared.CodeInvalidInput)
	})
}

func TestReport_HappyPath(t *testing.T) {
	r := newTestReport(t)
	admin := uuid.New()

	require.NoError(t, r.AcceptLevelOne(admin))
	assert.Equal(t, StatusPendingDeposit, r.Status)
	assert.Equal(t, &admin, r.ReviewedBy)

	imageID := uuid.New()
	require.NoError(t, r.SubmitDeposit(d("30"), imageID))
	assert.Equal(t, StatusInPendingDepositReview, r.Status)
	assert.Equal(t, &imageID, r.DepositImageID)

	additional, err := r.FinalAccept(admin)
	require.NoError(t, err)
	assertDecimal(t, "10", additional, "additional balance")
	assert.Equal(t, StatusAccepted, r.Status)
	require.NotNil(t, r.AcceptedAt)
	assert.Equal(t, time.UTC, r.AcceptedAt.Location())
	assert.False(t, r.IsActive())

	var types []string
	for _, e := range r.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{
		EventTypeReportLevelOneAccepted,
		EventTypeReportDepositSubmitted,
		EventTypeReportAccepted,
		EventTypeReportSettled,
	}, types)
}

func TestReport_RequestChangesAndResubmit(t *testing.T) {
	r := newTestReport(t)
	admin := uuid.New()

	requireCode(t, r.RequestChanges(admin, "  "), shared.CodeInvalidInput)
	assert.Equal(t, StatusInReview, r.Status)

	require.NoError(t, r.RequestChanges(admin, "recount bricks"))
	assert.Equal(t, StatusRequestedChanges, r.Status)
	assert.Equal(t, "recount bricks", r.ReasonMessage)
	assert.True(t, r.IsActive())

	newUnit := uuid.New()
	require.NoError(t, r.Resubmit("", d("150"), Figures{RealNetMoneyAmount: d("50")}, []LineItem{
		{ProductUnitID: newUnit, Quantity: d("14")},
	}))
	assert.Equal(t, StatusInReview, r.Status)
	assert.Equal(t, "March count", r.Title)
	assertDecimal(t, "150", r.CurrentMoneyAmount, "current money")
	require.Len(t, r.Items, 1)
	assert.Equal(t, newUnit, r.Items[0].ProductUnitID)
}

func TestReport_DepositRules(t *testing.T) {
	t.Run("deposit above current money is rejected", func(t *testing.T) {
		r := newTestReport(t)
		require.NoError(t, r.AcceptLevelOne(uuid.New()))

		requireCode(t, r.SubmitDeposit(d("140.01"), uuid.New()), shared.CodeInvalidInput)
		requireCode(t, r.SubmitDeposit(d("-1"), uuid.New()), shared.CodeInvalidInput)
		assert.Equal(t, StatusPendingDeposit, r.Status)
		assert.Nil(t, r.DepositMoneyAmount)
	})

	t.Run("deposit equal to current money is accepted", func(t *testing.T) {
		r := newTestReport(t)
		require.NoError(t, r.AcceptLevelOne(uuid.New()))
		require.NoError(t, r.SubmitDeposit(d("140"), uuid.New()))
		assertDecimal(t, "-100", r.AdditionalBalance(), "additional balance")
	})

	t.Run("deposit changes return to pending deposit", func(t *testing.T) {
		r := newTestReport(t)
		admin := uuid.New()
		require.NoError(t, r.AcceptLevelOne(admin))
		require.NoError(t, r.SubmitDeposit(d("10"), uuid.New()))
		require.NoError(t, r.RequestDepositChanges(admin, "blurry receipt"))
		assert.Equal(t, StatusPendingDeposit, r.Status)
		assert.Equal(t, "blurry receipt", r.ReasonMessage)
	})
}

func TestReport_InvalidTransitions(t *testing.T) {
	admin := uuid.New()
	tests := []struct {
		name string
		act  func(r *Report) error
	}{
		{"deposit before level one", func(r *Report) error { return r.SubmitDeposit(d("1"), uuid.New()) }},
		{"final accept from review", func(r *Report) error { _, err := r.FinalAccept(admin); return err }},
		{"resubmit from review", func(r *Report) error { return r.Resubmit("", d("1"), Figures{}, nil) }},
		{"deposit changes from review", func(r *Report) error { return r.RequestDepositChanges(admin, "x") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReport(t)
			version := r.Version
			requireCode(t, tt.act(r), shared.CodeInvalidState)
			assert.Equal(t, StatusInReview, r.Status)
			assert.Equal(t, version, r.Version)
			assert.Empty(t, r.GetDomainEvents())
		})
	}

	t.Run("accepted is terminal", func(t *testing.T) {
		r := newTestReport(t)
		require.NoError(t, r.AcceptLevelOne(admin))
		require.NoError(t, r.SubmitDeposit(d("1"), uuid.New()))
		_, err := r.FinalAccept(admin)
		require.NoError(t, err)

		assert.Empty(t, Transitions.Actions(r.Status))
		_, err = r.FinalAccept(admin)
		requireCode(t, err, shared.CodeInvalidState)
	})
}

func TestReport_CountedItems(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	r, err := NewReport(uuid.New(), uuid.New(), "", decimal.Zero, Figures{}, []LineItem{
		{ProductUnitID: a, OriginalQuantity: d("5"), Quantity: d("3")},
		{ProductUnitID: b, OriginalQuantity: d("2"), Quantity: d("0")},
	})
	require.NoError(t, err)

	counted := r.CountedItems()
	assert.Len(t, counted, 2)
	assertDecimal(t, "3", counted[a].Quantity, "a counted")
	assertDecimal(t, "5", counted[a].OriginalQuantity, "a original")
	assertDecimal(t, "0", counted[b].Quantity, "b counted")
}
