package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/report"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReportRepository implements ReportRepository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// FindByID loads a report header without line items
func (r *GormReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	var model models.ReportModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "report with ID %s not found", id)
	}
	return model.ToDomain(), nil
}

// FindByIDWithItems loads a report with its line items
func (r *GormReportRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	rep, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var items []models.ReportProductModel
	if err := r.db.WithContext(ctx).
		Where("report_id = ?", id).
		Order("product_name ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	rep.Items = make([]report.LineItem, len(items))
	for i := range items {
		rep.Items[i] = items[i].ToDomain()
	}
	return rep, nil
}

// FindAll lists report headers matching the filter
func (r *GormReportRepository) FindAll(ctx context.Context, filter shared.Filter) ([]report.Report, error) {
	var rows []models.ReportModel
	query := applyPaging(r.filtered(ctx, filter), filter, reportSortColumns)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]report.Report, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts reports matching the filter
func (r *GormReportRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormReportRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ReportModel{})
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	if v, ok := filter.Filters["inventory_id"]; ok {
		query = query.Where("inventory_id = ?", v)
	}
	if v, ok := filter.Filters["user_id"]; ok {
		query = query.Where("created_by = ?", v)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", searchPattern(filter.Search))
	}
	return query
}

// FindActiveByInventory returns the inventory's open report
func (r *GormReportRepository) FindActiveByInventory(ctx context.Context, inventoryID uuid.UUID) (*report.Report, error) {
	var model models.ReportModel
	if err := r.db.WithContext(ctx).
		Where("inventory_id = ? AND status <> ?", inventoryID, string(report.StatusAccepted)).
		First(&model).Error; err != nil {
		return nil, notFound(err, "inventory %s has no active report", inventoryID)
	}
	return model.ToDomain(), nil
}

// Create inserts a report and its line items. A second active report for the
// same inventory violates idx_reports_active_inventory and is reported as a conflict.
func (r *GormReportRepository) Create(ctx context.Context, rep *report.Report) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.ReportModelFromDomain(rep)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.Conflictf("there is already a report in progress for inventory %s", rep.InventoryID)
		}
		return err
	}
	return r.insertItems(db, rep)
}

// Update persists the header of an existing report with an optimistic version check
func (r *GormReportRepository) Update(ctx context.Context, rep *report.Report) error {
	m := models.ReportModelFromDomain(rep)
	result := r.db.WithContext(ctx).
		Model(&models.ReportModel{}).
		Where("id = ? AND version = ?", rep.ID, rep.Version-1).
		Updates(map[string]any{
			"title":                       m.Title,
			"status":                      m.Status,
			"current_money_amount":        m.CurrentMoneyAmount,
			"expected_sold_money_amount":  m.ExpectedSoldMoneyAmount,
			"total_expenses_money_amount": m.TotalExpensesMoneyAmount,
			"net_money_amount":            m.NetMoneyAmount,
			"real_net_money_amount":       m.RealNetMoneyAmount,
			"broken_money_amount":         m.BrokenMoneyAmount,
			"broken_rate":                 m.BrokenRate,
			"deposit_money_amount":        m.DepositMoneyAmount,
			"deposit_image_id":            m.DepositImageID,
			"reason_message":              m.ReasonMessage,
			"reviewed_by":                 m.ReviewedBy,
			"accepted_at":                 m.AcceptedAt,
			"version":                     m.Version,
			"updated_at":                  m.UpdatedAt,
		})
	return checkVersioned(result)
}

// ReplaceItems deletes every line item of the report and inserts rep.Items
func (r *GormReportRepository) ReplaceItems(ctx context.Context, rep *report.Report) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("report_id = ?", rep.ID).Delete(&models.ReportProductModel{}).Error; err != nil {
		return err
	}
	return r.insertItems(db, rep)
}

func (r *GormReportRepository) insertItems(db *gorm.DB, rep *report.Report) error {
	items := models.ReportProductModelsFromDomain(rep)
	if len(items) == 0 {
		return nil
	}
	return db.CreateInBatches(items, 100).Error
}

// FindStatisticRows returns line items of reports created at or after since,
// each joined with its report's breakage figures
func (r *GormReportRepository) FindStatisticRows(ctx context.Context, since time.Time, inventoryID *uuid.UUID) ([]report.StatisticRow, error) {
	var rows []report.StatisticRow
	query := r.db.WithContext(ctx).
		Table("report_products").
		Select("report_products.product_name, report_products.sold_units, report_products.sold_units_amount, "+
			"reports.broken_rate, reports.broken_money_amount").
		Joins("JOIN reports ON reports.id = report_products.report_id").
		Where("reports.created_at >= ?", since)
	if inventoryID != nil {
		query = query.Where("reports.inventory_id = ?", *inventoryID)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormReportRepository implements ReportRepository
var _ report.ReportRepository = (*GormReportRepository)(nil)
