package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// ReportRepository defines persistence for reports and their line items
type ReportRepository interface {
	// FindByID loads a report header without line items
	FindByID(ctx context.Context, id uuid.UUID) (*Report, error)

	// FindByIDWithItems loads a report with its line items
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*Report, error)

	// FindAll lists reports; supported filter keys are status, inventory_id and user_id
	FindAll(ctx context.Context, filter shared.Filter) ([]Report, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindActiveByInventory returns the inventory's open report or shared.ErrNotFound
	FindActiveByInventory(ctx context.Context, inventoryID uuid.UUID) (*Report, error)

	// Create inserts a new report together with its line items
	Create(ctx context.Context, r *Report) error

	// Update persists the header of an existing report. It fails with a
	// conflict when the stored version is not the one the change started from.
	Update(ctx context.Context, r *Report) error

	// ReplaceItems deletes every line item of the report and inserts r.Items
	ReplaceItems(ctx context.Context, r *Report) error

	// FindStatisticRows returns line items of reports created at or after since
	FindStatisticRows(ctx context.Context, since time.Time, inventoryID *uuid.UUID) ([]StatisticRow, error)
}
