package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/expense"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "expense with ID %s not found", id)
	}
	return model.ToDomain(), nil
}

// FindAll lists expenses matching the filter
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]expense.Expense, error) {
	var rows []models.ExpenseModel
	query := applyPaging(r.filtered(ctx, filter), filter, expenseSortColumns)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toExpenses(rows), nil
}

// Count counts expenses matching the filter
func (r *GormExpenseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormExpenseRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{})
	if v, ok := filter.Filters["inventory_id"]; ok {
		query = query.Where("inventory_id = ?", v)
	}
	if v, ok := filter.Filters["tag"]; ok {
		query = query.Where("tag = ?", v)
	}
	if v, ok := filter.Filters["report_id"]; ok {
		query = query.Where("report_id = ?", v)
	}
	if v, ok := filter.Filters["applied"]; ok {
		query = query.Where("applied = ?", v)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", searchPattern(filter.Search))
	}
	return query
}

// Create inserts a new expense
func (r *GormExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	return r.db.WithContext(ctx).Create(models.ExpenseModelFromDomain(e)).Error
}

// Update persists the editable fields of an unreconciled expense with an
// optimistic version check. Report linkage is owned by LinkToReport and
// MarkAppliedForReport, so a row claimed by a report meanwhile is a conflict.
func (r *GormExpenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	result := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Where("id = ? AND version = ?", e.ID, e.Version-1).
		Where("report_id IS NULL AND applied = ?", false).
		Updates(map[string]any{
			"name":        e.Name,
			"description": e.Description,
			"amount":      e.Amount,
			"tag":         string(e.Tag),
			"version":     e.Version,
			"updated_at":  e.UpdatedAt,
		})
	return checkVersioned(result)
}

// Delete removes an expense that is not linked to any report
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("report_id IS NULL AND applied = ?", false).
		Delete(&models.ExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFoundf("expense with ID %s not found", id)
	}
	return nil
}

// FindUnreconciled returns expenses of the inventory that no report has claimed
func (r *GormExpenseRepository) FindUnreconciled(ctx context.Context, inventoryID uuid.UUID) ([]expense.Expense, error) {
	var rows []models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("inventory_id = ? AND report_id IS NULL AND applied = ?", inventoryID, false).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toExpenses(rows), nil
}

// FindUnreconciledOrLinked returns unreconciled expenses plus the unapplied
// expenses already linked to reportID
func (r *GormExpenseRepository) FindUnreconciledOrLinked(ctx context.Context, inventoryID, reportID uuid.UUID) ([]expense.Expense, error) {
	var rows []models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("inventory_id = ? AND applied = ?", inventoryID, false).
		Where("(report_id IS NULL OR report_id = ?)", reportID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toExpenses(rows), nil
}

// LinkToReport points the given expenses at reportID. The version is bumped
// so edits prepared against the unlinked row fail their version check.
func (r *GormExpenseRepository) LinkToReport(ctx context.Context, ids []uuid.UUID, reportID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Where("id IN ? AND applied = ?", ids, false).
		Updates(map[string]any{
			"report_id":  reportID,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		}).Error
}

// MarkAppliedForReport flips applied on every unapplied expense linked to reportID.
// Rows already applied are left untouched.
func (r *GormExpenseRepository) MarkAppliedForReport(ctx context.Context, reportID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Where("report_id = ? AND applied = ?", reportID, false).
		Updates(map[string]any{
			"applied":    true,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func toExpenses(rows []models.ExpenseModel) []expense.Expense {
	out := make([]expense.Expense, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormExpenseRepository implements ExpenseRepository
var _ expense.ExpenseRepository = (*GormExpenseRepository)(nil)
