package expense

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/domain/expense"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ExpenseService manages the expense ledger outside of report settlement
type ExpenseService struct {
	expenseRepo   expense.ExpenseRepository
	inventoryRepo inventory.InventoryRepository
	eventBus      shared.EventPublisher
	logger        *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo expense.ExpenseRepository,
	inventoryRepo inventory.InventoryRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		expenseRepo:   expenseRepo,
		inventoryRepo: inventoryRepo,
		eventBus:      eventBus,
		logger:        logger,
	}
}

// ===================== Query Methods =====================

// GetByID returns an expense visible to the actor
func (s *ExpenseService) GetByID(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*ExpenseResponse, error) {
	e, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(e)
	return &response, nil
}

// List returns a page of expenses visible to the actor
func (s *ExpenseService) List(ctx context.Context, actor workflow.Actor, filter ListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Tag != "" {
		domainFilter.Filters["tag"] = filter.Tag
	}
	if filter.ReportID != nil {
		domainFilter.Filters["report_id"] = *filter.ReportID
	}
	if filter.Applied != nil {
		domainFilter.Filters["applied"] = *filter.Applied
	}
	if actor.IsAdmin() {
		if filter.InventoryID != nil {
			domainFilter.Filters["inventory_id"] = *filter.InventoryID
		}
	} else {
		inventoryID, err := actor.AssignedInventory()
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["inventory_id"] = inventoryID
	}
	domainFilter = domainFilter.Normalize()

	total, err := s.expenseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	expenses, err := s.expenseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses, total, nil
}

// ===================== Command Methods =====================

// Create records an unreconciled expense
func (s *ExpenseService) Create(ctx context.Context, actor workflow.Actor, req CreateExpenseRequest) (*ExpenseResponse, error) {
	inventoryID, err := s.targetInventory(ctx, actor, req.InventoryID)
	if err != nil {
		return nil, err
	}
	tag, err := expense.ParseTag(req.Tag)
	if err != nil {
		return nil, err
	}

	e, err := expense.NewExpense(inventoryID, actor.UserID, req.Name, req.Amount, tag, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("Expense recorded",
		zap.String("expense_id", e.ID.String()),
		zap.String("inventory_id", inventoryID.String()),
		zap.String("amount", e.Amount.String()),
		zap.String("tag", string(e.Tag)),
	)
	workflow.PublishEvents(ctx, s.eventBus, s.logger, e)

	response := ToExpenseResponse(e)
	return &response, nil
}

// Update edits an expense that no report has claimed yet
func (s *ExpenseService) Update(ctx context.Context, actor workflow.Actor, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	e, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	tag, err := expense.ParseTag(req.Tag)
	if err != nil {
		return nil, err
	}
	if err := e.Update(req.Name, req.Amount, tag, req.Description); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	response := ToExpenseResponse(e)
	return &response, nil
}

// Delete removes an expense that no report has claimed yet
func (s *ExpenseService) Delete(ctx context.Context, actor workflow.Actor, id uuid.UUID) error {
	e, err := s.find(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := e.EnsureDeletable(); err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Expense deleted",
		zap.String("expense_id", id.String()),
		zap.String("inventory_id", e.InventoryID.String()),
	)
	return nil
}

func (s *ExpenseService) find(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*expense.Expense, error) {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(e.InventoryID) {
		return nil, shared.NotFoundf("expense with ID %s not found", id)
	}
	return e, nil
}

// targetInventory resolves which inventory a new expense belongs to
func (s *ExpenseService) targetInventory(ctx context.Context, actor workflow.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if !actor.IsAdmin() {
		own, err := actor.AssignedInventory()
		if err != nil {
			return uuid.Nil, err
		}
		if requested != nil && *requested != own {
			return uuid.Nil, shared.Forbiddenf("you can only record expenses for your inventory")
		}
		return own, nil
	}

	if requested == nil || *requested == uuid.Nil {
		return uuid.Nil, shared.InvalidInputf("inventoryId is required")
	}
	if _, err := s.inventoryRepo.FindByID(ctx, *requested); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return uuid.Nil, shared.NotFoundf("inventory with ID %s not found", *requested)
		}
		return uuid.Nil, err
	}
	return *requested, nil
}
