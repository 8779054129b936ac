package expense_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	expenseapp "github.com/stockflow/backend/internal/application/expense"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/application/workflow/workflowtest"
	"github.com/stockflow/backend/internal/domain/expense"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stockflow/backend/internal/infrastructure/persistence/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error %s, got %v", code, err)
	assert.Equal(t, code, de.Code, de.Message)
}

type fixture struct {
	ctx         context.Context
	svc         *expenseapp.ExpenseService
	repo        *persistence.GormExpenseRepository
	bus         *workflowtest.Publisher
	inventoryID uuid.UUID
	otherID     uuid.UUID
	worker      workflow.Actor
	admin       workflow.Actor
	outsider    workflow.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	f := &fixture{
		ctx:         context.Background(),
		repo:        persistence.NewGormExpenseRepository(db),
		bus:         workflowtest.NewPublisher(),
		inventoryID: testdb.Inventory(t, db, "Main shop", decimal.Zero),
		otherID:     testdb.Inventory(t, db, "Other shop", decimal.Zero),
	}
	f.svc = expenseapp.NewExpenseService(f.repo, persistence.NewGormInventoryRepository(db), f.bus, zaptest.NewLogger(t))
	f.worker = workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker, InventoryID: f.inventoryID}
	f.admin = workflow.Actor{UserID: uuid.New(), Role: workflow.RoleAdmin}
	f.outsider = workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker, InventoryID: f.otherID}
	return f
}

func TestExpenseService_Create(t *testing.T) {
	t.Run("worker records against their inventory", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.svc.Create(f.ctx, f.worker, expenseapp.CreateExpenseRequest{
			Name: "Fuel", Amount: decimal.NewFromInt(20), Tag: "shipment_card",
		})
		require.NoError(t, err)
		assert.Equal(t, f.inventoryID, created.InventoryID)
		assert.Equal(t, f.worker.UserID, created.UserID)
		assert.Equal(t, "SHIPMENT_CARD", created.Tag)
		assert.Nil(t, created.ReportID)
		assert.False(t, created.Applied)
		assert.Equal(t, []string{expense.EventTypeExpenseRecorded}, f.bus.Types())
	})

	t.Run("admin names the inventory", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.svc.Create(f.ctx, f.admin, expenseapp.CreateExpenseRequest{
			InventoryID: &f.otherID, Name: "Rent", Amount: decimal.NewFromInt(300), Tag: "RENT",
		})
		require.NoError(t, err)
		assert.Equal(t, f.otherID, created.InventoryID)
	})

	unknown := uuid.New()
	tests := []struct {
		name  string
		actor func(f *fixture) workflow.Actor
		req   func(f *fixture) expenseapp.CreateExpenseRequest
		code  string
	}{
		{
			name:  "admin without inventory",
			actor: func(f *fixture) workflow.Actor { return f.admin },
			req: func(*fixture) expenseapp.CreateExpenseRequest {
				return expenseapp.CreateExpenseRequest{Name: "Rent", Amount: decimal.NewFromInt(1)}
			},
			code: shared.CodeInvalidInput,
		},
		{
			name:  "admin with unknown inventory",
			actor: func(f *fixture) workflow.Actor { return f.admin },
			req: func(*fixture) expenseapp.CreateExpenseRequest {
				return expenseapp.CreateExpenseRequest{InventoryID: &unknown, Name: "Rent", Amount: decimal.NewFromInt(1)}
			},
			code: shared.CodeNotFound,
		},
		{
			name:  "worker targeting another inventory",
			actor: func(f *fixture) workflow.Actor { return f.worker },
			req: func(f *fixture) expenseapp.CreateExpenseRequest {
				return expenseapp.CreateExpenseRequest{InventoryID: &f.otherID, Name: "Rent", Amount: decimal.NewFromInt(1)}
			},
			code: shared.CodeForbidden,
		},
		{
			name:  "unknown tag",
			actor: func(f *fixture) workflow.Actor { return f.worker },
			req: func(*fixture) expenseapp.CreateExpenseRequest {
				return expenseapp.CreateExpenseRequest{Name: "Gift", Amount: decimal.NewFromInt(1), Tag: "GIFTS"}
			},
			code: shared.CodeInvalidInput,
		},
		{
			name:  "zero amount",
			actor: func(f *fixture) workflow.Actor { return f.worker },
			req: func(*fixture) expenseapp.CreateExpenseRequest {
				return expenseapp.CreateExpenseRequest{Name: "Fuel", Amount: decimal.Zero}
			},
			code: shared.CodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(f.ctx, tt.actor(f), tt.req(f))
			requireCode(t, err, tt.code)
			assert.Empty(t, f.bus.Events())
		})
	}
}

func TestExpenseService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(f.ctx, f.worker, expenseapp.CreateExpenseRequest{Name: "Fuel", Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)

	updated, err := f.svc.Update(f.ctx, f.worker, created.ID, expenseapp.UpdateExpenseRequest{
		Name: "Diesel", Amount: decimal.NewFromInt(25), Tag: "OTHER", Description: "truck",
	})
	require.NoError(t, err)
	assert.Equal(t, "Diesel", updated.Name)
	assert.True(t, decimal.NewFromInt(25).Equal(updated.Amount))

	_, err = f.svc.Update(f.ctx, f.outsider, created.ID, expenseapp.UpdateExpenseRequest{Name: "x", Amount: decimal.NewFromInt(1)})
	requireCode(t, err, shared.CodeNotFound)
	requireCode(t, f.svc.Delete(f.ctx, f.outsider, created.ID), shared.CodeNotFound)

	require.NoError(t, f.svc.Delete(f.ctx, f.worker, created.ID))
	_, err = f.svc.GetByID(f.ctx, f.worker, created.ID)
	requireCode(t, err, shared.CodeNotFound)
}

func TestExpenseService_LockedOnceLinked(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(f.ctx, f.worker, expenseapp.CreateExpenseRequest{Name: "Fuel", Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)

	reportID := uuid.New()
	require.NoError(t, f.repo.LinkToReport(f.ctx, []uuid.UUID{created.ID}, reportID))

	_, err = f.svc.Update(f.ctx, f.worker, created.ID, expenseapp.UpdateExpenseRequest{Name: "x", Amount: decimal.NewFromInt(1)})
	requireCode(t, err, shared.CodeConflict)
	requireCode(t, f.svc.Delete(f.ctx, f.worker, created.ID), shared.CodeConflict)

	linked, total, err := f.svc.List(f.ctx, f.admin, expenseapp.ListFilter{ReportID: &reportID})
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, &reportID, linked[0].ReportID)
}

func TestExpenseService_List(t *testing.T) {
	f := newFixture(t)
	for _, req := range []struct {
		actor workflow.Actor
		name  string
		tag   string
	}{
		{f.worker, "Fuel", "SHIPMENT_CARD"},
		{f.worker, "Rent", "RENT"},
		{f.outsider, "Salary", "SALARY"},
	} {
		_, err := f.svc.Create(f.ctx, req.actor, expenseapp.CreateExpenseRequest{Name: req.name, Amount: decimal.NewFromInt(10), Tag: req.tag})
		require.NoError(t, err)
	}

	all, total, err := f.svc.List(f.ctx, f.admin, expenseapp.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, int64(3), total)

	own, _, err := f.svc.List(f.ctx, f.worker, expenseapp.ListFilter{InventoryID: &f.otherID})
	require.NoError(t, err)
	assert.Len(t, own, 2)
	for _, e := range own {
		assert.Equal(t, f.inventoryID, e.InventoryID)
	}

	rent, _, err := f.svc.List(f.ctx, f.worker, expenseapp.ListFilter{Tag: "RENT"})
	require.NoError(t, err)
	require.Len(t, rent, 1)
	assert.Equal(t, "Rent", rent[0].Name)

	unapplied := false
	open, _, err := f.svc.List(f.ctx, f.admin, expenseapp.ListFilter{InventoryID: &f.otherID, Applied: &unapplied})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Salary", open[0].Name)

	_, _, err = f.svc.List(f.ctx, workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker}, expenseapp.ListFilter{})
	requireCode(t, err, shared.CodeForbidden)
}

// MockExpenseRepository is a mock implementation of expense.ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]expense.Expense, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindUnreconciled(ctx context.Context, inventoryID uuid.UUID) ([]expense.Expense, error) {
	args := m.Called(ctx, inventoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindUnreconciledOrLinked(ctx context.Context, inventoryID, reportID uuid.UUID) ([]expense.Expense, error) {
	args := m.Called(ctx, inventoryID, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) LinkToReport(ctx context.Context, ids []uuid.UUID, reportID uuid.UUID) error {
	args := m.Called(ctx, ids, reportID)
	return args.Error(0)
}

func (m *MockExpenseRepository) MarkAppliedForReport(ctx context.Context, reportID uuid.UUID) (int64, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).(int64), args.Error(1)
}

func TestExpenseService_RepositoryFailures(t *testing.T) {
	ctx := context.Background()
	inventoryID := uuid.New()
	worker := workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker, InventoryID: inventoryID}
	dbErr := errors.New("connection reset")

	t.Run("failed insert publishes nothing", func(t *testing.T) {
		repo := new(MockExpenseRepository)
		bus := workflowtest.NewPublisher()
		svc := expenseapp.NewExpenseService(repo, nil, bus, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*expense.Expense")).Return(dbErr)

		_, err := svc.Create(ctx, worker, expenseapp.CreateExpenseRequest{Name: "Fuel", Amount: decimal.NewFromInt(5)})
		assert.ErrorIs(t, err, dbErr)
		assert.Empty(t, bus.Events())
		repo.AssertExpectations(t)
	})

	t.Run("count failure stops listing", func(t *testing.T) {
		repo := new(MockExpenseRepository)
		svc := expenseapp.NewExpenseService(repo, nil, nil, nil)
		repo.On("Count", ctx, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["inventory_id"] == inventoryID
		})).Return(int64(0), dbErr)

		_, _, err := svc.List(ctx, worker, expenseapp.ListFilter{})
		assert.ErrorIs(t, err, dbErr)
		repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("locked expense is never deleted", func(t *testing.T) {
		repo := new(MockExpenseRepository)
		svc := expenseapp.NewExpenseService(repo, nil, nil, nil)
		reportID := uuid.New()
		e, err := expense.NewExpense(inventoryID, worker.UserID, "Fuel", decimal.NewFromInt(5), expense.TagOther, "")
		require.NoError(t, err)
		require.NoError(t, e.LinkTo(reportID))
		repo.On("FindByID", ctx, e.ID).Return(e, nil)

		requireCode(t, svc.Delete(ctx, worker, e.ID), shared.CodeConflict)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
