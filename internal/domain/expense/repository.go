package expense

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// ExpenseRepository defines persistence for the expense ledger
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// FindAll lists expenses; supported filter keys are inventory_id, tag,
	// report_id and applied
	FindAll(ctx context.Context, filter shared.Filter) ([]Expense, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	Create(ctx context.Context, e *Expense) error
	// Update persists an existing expense with an optimistic version check
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindUnreconciled returns expenses of the inventory that no report has claimed
	FindUnreconciled(ctx context.Context, inventoryID uuid.UUID) ([]Expense, error)

	// FindUnreconciledOrLinked returns unreconciled expenses together with
	// the unapplied expenses already linked to reportID
	FindUnreconciledOrLinked(ctx context.Context, inventoryID, reportID uuid.UUID) ([]Expense, error)

	// LinkToReport points the given expenses at reportID
	LinkToReport(ctx context.Context, ids []uuid.UUID, reportID uuid.UUID) error

	// MarkAppliedForReport flips applied to true on every unapplied expense
	// linked to reportID and returns the number of rows changed
	MarkAppliedForReport(ctx context.Context, reportID uuid.UUID) (int64, error)
}
