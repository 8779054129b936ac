package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	fileapp "github.com/stockflow/backend/internal/application/file"
	reportapp "github.com/stockflow/backend/internal/application/report"
	shipmentapp "github.com/stockflow/backend/internal/application/shipment"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/application/workflow/workflowtest"
	"github.com/stockflow/backend/internal/domain/expense"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/report"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/event"
	"github.com/stockflow/backend/internal/infrastructure/lock"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stockflow/backend/internal/infrastructure/persistence/testdb"
	"github.com/stockflow/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error %s, got %v", code, err)
	assert.Equal(t, code, de.Code, de.Message)
}

type fixture struct {
	ctx         context.Context
	db          *gorm.DB
	svc         *reportapp.ReportService
	files       *fileapp.FileService
	locker      *lock.MemoryLocker
	bus         *workflowtest.Publisher
	metrics     *workflowtest.Recorder
	inventoryID uuid.UUID
	unitID      uuid.UUID
	worker      workflow.Actor
	admin       workflow.Actor
	outsider    workflow.Actor
}

// newFixture seeds an inventory with balance 100 holding 20 pieces of one
// product priced at 10.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	log := zaptest.NewLogger(t)

	f := &fixture{
		ctx:         context.Background(),
		db:          db,
		locker:      lock.NewMemoryLocker(lock.Options{TTL: time.Second}),
		bus:         workflowtest.NewPublisher(),
		metrics:     &workflowtest.Recorder{},
		inventoryID: testdb.Inventory(t, db, "Main shop", d("100")),
	}
	f.unitID = testdb.ProductUnit(t, db, f.inventoryID, "Cement", d("10"), d("20"), d("4"))
	otherInventory := testdb.Inventory(t, db, "Other shop", d("0"))

	f.svc = reportapp.NewReportService(
		persistence.NewGormReportRepository(db),
		persistence.NewGormTransactionScope(db),
		f.locker, f.bus, f.metrics, log,
	)
	f.files = fileapp.NewFileService(persistence.NewGormFileRepository(db), storage.NewMemoryStore(true), log)
	f.worker = workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker, InventoryID: f.inventoryID}
	f.admin = workflow.Actor{UserID: uuid.New(), Role: workflow.RoleAdmin}
	f.outsider = workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker, InventoryID: otherInventory}
	return f
}

func (f *fixture) submission(counted, money string) reportapp.SubmitReportRequest {
	return reportapp.SubmitReportRequest{
		Title:              "Weekly count",
		CurrentMoneyAmount: d(money),
		Products:           []reportapp.ProductCountRequest{{ProductUnitID: f.unitID, Quantity: d(counted)}},
	}
}

func (f *fixture) recordExpense(t *testing.T, amount string) *expense.Expense {
	t.Helper()
	e, err := expense.NewExpense(f.inventoryID, f.worker.UserID, "Fuel", d(amount), expense.TagOther, "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormExpenseRepository(f.db).Create(f.ctx, e))
	return e
}

func (f *fixture) uploadReceipt(t *testing.T, actor workflow.Actor) uuid.UUID {
	t.Helper()
	upload, err := f.files.InitiateDepositReceipt(f.ctx, actor, fileapp.InitiateUploadRequest{
		FileName: "receipt.jpg", ContentType: "image/jpeg", FileSize: 2048,
	})
	require.NoError(t, err)
	_, err = f.files.ConfirmUpload(f.ctx, actor, upload.FileID)
	require.NoError(t, err)
	return upload.FileID
}

func (f *fixture) toPendingDeposit(t *testing.T) *reportapp.ReportResponse {
	t.Helper()
	created, err := f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
	require.NoError(t, err)
	accepted, err := f.svc.AcceptLevelOne(f.ctx, f.admin, created.ID)
	require.NoError(t, err)
	return accepted
}

func TestReportService_FullSettlement(t *testing.T) {
	f := newFixture(t)
	fuel := f.recordExpense(t, "10")

	created, err := f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
	require.NoError(t, err)
	assert.Equal(t, string(report.StatusInReview), created.Status)
	assertDecimal(t, "50", created.ExpectedSelledMoneyAmount, "expected")
	assertDecimal(t, "10", created.TotalExpensesMoneyAmount, "expenses")
	assertDecimal(t, "40", created.NetMoneyAmount, "net")
	assertDecimal(t, "40", created.RealNetMoneyAmount, "real net")
	assertDecimal(t, "0", created.BrokenMoneyAmount, "broken")
	assert.ElementsMatch(t, []string{"accept_level_one", "request_changes"}, created.AllowedActions)
	require.Len(t, created.Products, 1)
	assertDecimal(t, "3.75", created.Products[0].Pallets, "pallets")

	expenses := persistence.NewGormExpenseRepository(f.db)
	linked, err := expenses.FindByID(f.ctx, fuel.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.ReportID)
	assert.Equal(t, created.ID, *linked.ReportID)
	assert.False(t, linked.Applied)

	_, err = f.svc.AcceptLevelOne(f.ctx, f.admin, created.ID)
	require.NoError(t, err)

	receipt := f.uploadReceipt(t, f.worker)
	deposited, err := f.svc.SubmitDeposit(f.ctx, f.worker, created.ID, reportapp.SubmitDepositRequest{
		DepositMoneyAmount: d("30"), DepositImageID: receipt,
	})
	require.NoError(t, err)
	assert.Equal(t, string(report.StatusInPendingDepositReview), deposited.Status)

	accepted, err := f.svc.FinalAccept(f.ctx, f.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(report.StatusAccepted), accepted.Status)
	assert.Empty(t, accepted.AllowedActions)
	assert.NotNil(t, accepted.AcceptedAt)

	current, total := testdb.Balance(t, f.db, f.inventoryID)
	assertDecimal(t, "110", current, "current balance")
	assertDecimal(t, "110", total, "total balance")
	assertDecimal(t, "15", testdb.UnitQuantity(t, f.db, f.unitID), "unit quantity")

	applied, err := expenses.FindByID(f.ctx, fuel.ID)
	require.NoError(t, err)
	assert.True(t, applied.Applied)

	usedFile, err := f.files.GetByID(f.ctx, f.worker, receipt)
	require.NoError(t, err)
	assert.True(t, usedFile.IsUsed)
	assert.Equal(t, &created.ID, usedFile.UsedBy)

	assert.Equal(t, []string{
		report.EventTypeReportSubmitted,
		report.EventTypeReportLevelOneAccepted,
		report.EventTypeReportDepositSubmitted,
		report.EventTypeReportAccepted,
		report.EventTypeReportSettled,
		inventory.EventTypeBalanceChanged,
	}, f.bus.Types())

	require.Len(t, f.metrics.Deltas, 1)
	assertDecimal(t, "10", f.metrics.Deltas[0], "ledger delta")
	require.Len(t, f.metrics.Transitions, 4)
	assert.Equal(t, workflowtest.Transition{Aggregate: "report", Action: "final_accept", ToStatus: "ACCEPTED"}, f.metrics.Transitions[3])

	// the inventory is free for a new count
	_, err = f.svc.Create(f.ctx, f.worker, f.submission("15", "110"))
	require.NoError(t, err)
}

func TestReportService_SettlementKeepsDeliveries(t *testing.T) {
	f := newFixture(t)
	shipments := shipmentapp.NewShipmentService(
		persistence.NewGormShipmentRepository(f.db),
		persistence.NewGormTransactionScope(f.db),
		nil, nil, nil, zaptest.NewLogger(t),
	)

	created, err := f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
	require.NoError(t, err)

	// a delivery of 5 is accepted while the count is under review
	planned, err := shipments.Create(f.ctx, f.admin, shipmentapp.CreateShipmentRequest{
		InventoryID: f.inventoryID, Title: "Top up",
	})
	require.NoError(t, err)
	_, err = shipments.SubmitForReview(f.ctx, f.worker, planned.ID, shipmentapp.SubmitForReviewRequest{
		Products:      []shipmentapp.DeliveredProductRequest{{ProductUnitID: f.unitID, Quantity: d("5")}},
		OtherExpenses: d("4"),
	})
	require.NoError(t, err)
	_, err = shipments.Accept(f.ctx, f.admin, planned.ID)
	require.NoError(t, err)
	assertDecimal(t, "25", testdb.UnitQuantity(t, f.db, f.unitID), "after delivery")

	_, err = f.svc.AcceptLevelOne(f.ctx, f.admin, created.ID)
	require.NoError(t, err)
	receipt := f.uploadReceipt(t, f.worker)
	_, err = f.svc.SubmitDeposit(f.ctx, f.worker, created.ID, reportapp.SubmitDepositRequest{
		DepositMoneyAmount: d("30"), DepositImageID: receipt,
	})
	require.NoError(t, err)
	_, err = f.svc.FinalAccept(f.ctx, f.admin, created.ID)
	require.NoError(t, err)

	// counted 15 of 20, plus the 5 delivered since
	assertDecimal(t, "20", testdb.UnitQuantity(t, f.db, f.unitID), "after settlement")
	current, _ := testdb.Balance(t, f.db, f.inventoryID)
	assertDecimal(t, "106", current, "current balance")
}

func TestReportService_Create(t *testing.T) {
	t.Run("one active report per inventory", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
		require.NoError(t, err)

		_, err = f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
		requireCode(t, err, shared.CodeConflict)
	})

	t.Run("requested changes still blocks a new report", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
		require.NoError(t, err)
		_, err = f.svc.RequestChanges(f.ctx, f.admin, created.ID, reportapp.ReasonRequest{ReasonMessage: "recount"})
		require.NoError(t, err)

		_, err = f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
		requireCode(t, err, shared.CodeConflict)
	})

	t.Run("rejects money below the inventory balance without writing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(f.ctx, f.worker, f.submission("15", "99.99"))
		requireCode(t, err, shared.CodeInvalidInput)

		list, total, err := f.svc.List(f.ctx, f.admin, reportapp.ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Zero(t, total)
		assert.Empty(t, f.bus.Events())
	})

	t.Run("rejects counts that miss a unit", func(t *testing.T) {
		f := newFixture(t)
		testdb.ProductUnit(t, f.db, f.inventoryID, "Bricks", d("1"), d("100"), d("0"))

		_, err := f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
		requireCode(t, err, shared.CodeNotFound)
	})

	t.Run("admins are not assigned to an inventory", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(f.ctx, f.admin, f.submission("15", "140"))
		requireCode(t, err, shared.CodeForbidden)
	})

	t.Run("held inventory lock fails fast", func(t *testing.T) {
		f := newFixture(t)
		release, err := f.locker.Lock(f.ctx, workflow.ReportLockKey(f.inventoryID))
		require.NoError(t, err)
		defer release(f.ctx)

		_, err = f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
		require.ErrorIs(t, err, shared.ErrLockNotObtained)
	})
}

func TestReportService_RequestChangesAndResubmit(t *testing.T) {
	f := newFixture(t)
	f.recordExpense(t, "10")

	created, err := f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
	require.NoError(t, err)

	_, err = f.svc.RequestChanges(f.ctx, f.admin, created.ID, reportapp.ReasonRequest{ReasonMessage: " "})
	requireCode(t, err, shared.CodeInvalidInput)

	changes, err := f.svc.RequestChanges(f.ctx, f.admin, created.ID, reportapp.ReasonRequest{ReasonMessage: "recount cement"})
	require.NoError(t, err)
	assert.Equal(t, string(report.StatusRequestedChanges), changes.Status)
	assert.Equal(t, "recount cement", changes.ReasonMessage)
	assert.Equal(t, []string{"resubmit"}, changes.AllowedActions)

	// recorded after the first submission, picked up on resubmission
	f.recordExpense(t, "5")

	_, err = f.svc.UpdateRequested(f.ctx, f.outsider, created.ID, f.submission("12", "150"))
	requireCode(t, err, shared.CodeForbidden)

	resubmitted, err := f.svc.UpdateRequested(f.ctx, f.worker, created.ID, f.submission("12", "150"))
	require.NoError(t, err)
	assert.Equal(t, string(report.StatusInReview), resubmitted.Status)
	assertDecimal(t, "80", resubmitted.ExpectedSelledMoneyAmount, "expected")
	assertDecimal(t, "15", resubmitted.TotalExpensesMoneyAmount, "expenses")
	assertDecimal(t, "65", resubmitted.NetMoneyAmount, "net")
	assertDecimal(t, "50", resubmitted.RealNetMoneyAmount, "real net")
	assertDecimal(t, "15", resubmitted.BrokenMoneyAmount, "broken")
	assertDecimal(t, "18.75", resubmitted.BrokenRate, "rate")
	require.Len(t, resubmitted.Products, 1)
	assertDecimal(t, "12", resubmitted.Products[0].Quantity, "quantity")
	assert.Greater(t, resubmitted.Version, created.Version)

	var stored int64
	require.NoError(t, f.db.Table("report_products").Where("report_id = ?", created.ID).Count(&stored).Error)
	assert.Equal(t, int64(1), stored)

	reloaded, err := f.svc.GetByID(f.ctx, f.admin, created.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Products, 1)
	assertDecimal(t, "12", reloaded.Products[0].Quantity, "stored quantity")
	assertDecimal(t, "80", reloaded.ExpectedSelledMoneyAmount, "stored expected")

	_, err = f.svc.UpdateRequested(f.ctx, f.worker, created.ID, f.submission("12", "150"))
	requireCode(t, err, shared.CodeInvalidState)

	list, _, err := f.svc.List(f.ctx, f.admin, reportapp.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, f.bus.Types(), report.EventTypeReportResubmitted)
}

func TestReportService_Deposit(t *testing.T) {
	t.Run("rejects deposit above current money", func(t *testing.T) {
		f := newFixture(t)
		r := f.toPendingDeposit(t)
		receipt := f.uploadReceipt(t, f.worker)

		_, err := f.svc.SubmitDeposit(f.ctx, f.worker, r.ID, reportapp.SubmitDepositRequest{
			DepositMoneyAmount: d("500"), DepositImageID: receipt,
		})
		requireCode(t, err, shared.CodeInvalidInput)
	})

	t.Run("unknown receipt leaves the report untouched", func(t *testing.T) {
		f := newFixture(t)
		r := f.toPendingDeposit(t)

		_, err := f.svc.SubmitDeposit(f.ctx, f.worker, r.ID, reportapp.SubmitDepositRequest{
			DepositMoneyAmount: d("30"), DepositImageID: uuid.New(),
		})
		requireCode(t, err, shared.CodeNotFound)

		stored, err := f.svc.GetByID(f.ctx, f.admin, r.ID)
		require.NoError(t, err)
		assert.Equal(t, string(report.StatusPendingDeposit), stored.Status)
		assert.Nil(t, stored.DepositMoneyAmount)
	})

	t.Run("receipt of another inventory is not found", func(t *testing.T) {
		f := newFixture(t)
		r := f.toPendingDeposit(t)
		foreign := f.uploadReceipt(t, f.outsider)

		_, err := f.svc.SubmitDeposit(f.ctx, f.worker, r.ID, reportapp.SubmitDepositRequest{
			DepositMoneyAmount: d("30"), DepositImageID: foreign,
		})
		requireCode(t, err, shared.CodeNotFound)
	})

	t.Run("a receipt is used once", func(t *testing.T) {
		f := newFixture(t)
		r := f.toPendingDeposit(t)
		receipt := f.uploadReceipt(t, f.worker)
		deposit := reportapp.SubmitDepositRequest{DepositMoneyAmount: d("30"), DepositImageID: receipt}

		_, err := f.svc.SubmitDeposit(f.ctx, f.worker, r.ID, deposit)
		require.NoError(t, err)
		_, err = f.svc.RequestChangesAtDeposit(f.ctx, f.admin, r.ID, reportapp.ReasonRequest{ReasonMessage: "wrong slip"})
		require.NoError(t, err)

		_, err = f.svc.SubmitDeposit(f.ctx, f.worker, r.ID, deposit)
		requireCode(t, err, shared.CodeNotFound)
	})

	t.Run("only the owning worker deposits", func(t *testing.T) {
		f := newFixture(t)
		r := f.toPendingDeposit(t)
		receipt := f.uploadReceipt(t, f.outsider)

		_, err := f.svc.SubmitDeposit(f.ctx, f.outsider, r.ID, reportapp.SubmitDepositRequest{
			DepositMoneyAmount: d("30"), DepositImageID: receipt,
		})
		requireCode(t, err, shared.CodeForbidden)
	})

	t.Run("final acceptance needs a deposit", func(t *testing.T) {
		f := newFixture(t)
		r := f.toPendingDeposit(t)

		_, err := f.svc.FinalAccept(f.ctx, f.admin, r.ID)
		requireCode(t, err, shared.CodeInvalidState)
		current, _ := testdb.Balance(t, f.db, f.inventoryID)
		assertDecimal(t, "100", current, "balance")
	})
}

func TestReportService_Visibility(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
	require.NoError(t, err)

	_, err = f.svc.GetByID(f.ctx, f.outsider, created.ID)
	requireCode(t, err, shared.CodeNotFound)
	_, err = f.svc.GetByID(f.ctx, f.worker, uuid.New())
	requireCode(t, err, shared.CodeNotFound)

	own, err := f.svc.GetByID(f.ctx, f.worker, created.ID)
	require.NoError(t, err)
	assert.Equal(t, f.worker.UserID, own.UserID)

	list, total, err := f.svc.List(f.ctx, f.outsider, reportapp.ListFilter{InventoryID: &f.inventoryID})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)

	list, total, err = f.svc.List(f.ctx, f.admin, reportapp.ListFilter{InventoryID: &f.inventoryID, Status: "IN_REVIEW"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(1), total)

	list, _, err = f.svc.List(f.ctx, f.admin, reportapp.ListFilter{Status: "ACCEPTED"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReportService_Statistics(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(f.ctx, f.worker, f.submission("15", "140"))
	require.NoError(t, err)

	stats, err := f.svc.Statistics(f.ctx, f.worker, reportapp.StatisticsFilter{Duration: "YEAR"})
	require.NoError(t, err)
	assert.Equal(t, "YEAR", stats.Duration)
	require.Len(t, stats.Products, 1)
	assert.Equal(t, "Cement", stats.Products[0].Name)
	assertDecimal(t, "5", stats.Products[0].Count, "sold units")
	assertDecimal(t, "50", stats.Products[0].Amount, "sold amount")
	assertDecimal(t, "50", stats.TotalAmount, "total amount")

	foreign, err := f.svc.Statistics(f.ctx, f.outsider, reportapp.StatisticsFilter{Duration: "YEAR"})
	require.NoError(t, err)
	assert.Empty(t, foreign.Products)

	_, err = f.svc.Statistics(f.ctx, f.admin, reportapp.StatisticsFilter{Duration: "EPOCH"})
	requireCode(t, err, shared.CodeInvalidInput)
}

func TestReportService_EventsReachSubscribers(t *testing.T) {
	db := testdb.New(t)
	inventoryID := testdb.Inventory(t, db, "Main shop", d("0"))
	unitID := testdb.ProductUnit(t, db, inventoryID, "Cement", d("10"), d("20"), d("4"))

	bus := event.NewInMemoryEventBus(zaptest.NewLogger(t))
	submitted := workflowtest.NewHandler(report.EventTypeReportSubmitted)
	bus.Subscribe(submitted)

	svc := reportapp.NewReportService(persistence.NewGormReportRepository(db), persistence.NewGormTransactionScope(db), nil, bus, nil, nil)
	worker := workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker, InventoryID: inventoryID}

	created, err := svc.Create(context.Background(), worker, reportapp.SubmitReportRequest{
		CurrentMoneyAmount: d("0"),
		Products:           []reportapp.ProductCountRequest{{ProductUnitID: unitID, Quantity: d("20")}},
	})
	require.NoError(t, err)

	require.Equal(t, 1, submitted.Count())
	ev := submitted.Handled()[0].(*report.ReportSubmittedEvent)
	assert.Equal(t, created.ID, ev.AggregateID())
	assert.Equal(t, inventoryID, ev.InventoryID())
	assert.Equal(t, worker.UserID, ev.WorkerID)
	assert.False(t, ev.Resubmission)
}
