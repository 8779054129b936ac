package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shipment"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID loads a shipment with line items and itemized expenses
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Expenses").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "shipment with ID %s not found", id)
	}
	return model.ToDomain(), nil
}

// FindAll lists shipments matching the filter, with their itemized expenses
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]shipment.Shipment, error) {
	var rows []models.ShipmentModel
	query := applyPaging(r.filtered(ctx, filter), filter, shipmentSortColumns).Preload("Expenses")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]shipment.Shipment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormShipmentRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ShipmentModel{})
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	if v, ok := filter.Filters["inventory_id"]; ok {
		query = query.Where("inventory_id = ?", v)
	}
	if v, ok := filter.Filters["title"]; ok {
		query = query.Where("title = ?", v)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", searchPattern(filter.Search))
	}
	return query
}

// FindActiveByInventory returns the inventory's open shipment
func (r *GormShipmentRepository) FindActiveByInventory(ctx context.Context, inventoryID uuid.UUID) (*shipment.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Where("inventory_id = ? AND status <> ?", inventoryID, string(shipment.StatusAccepted)).
		First(&model).Error; err != nil {
		return nil, notFound(err, "inventory %s has no active shipment", inventoryID)
	}
	return model.ToDomain(), nil
}

// Create inserts a shipment with its itemized expenses
func (r *GormShipmentRepository) Create(ctx context.Context, s *shipment.Shipment) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Items", "Expenses").Create(models.ShipmentModelFromDomain(s)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.Conflictf("there is already a shipment in progress for inventory %s", s.InventoryID)
		}
		return err
	}
	return r.insertExpenses(db, s)
}

// Update persists the header with an optimistic version check
func (r *GormShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	m := models.ShipmentModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]any{
			"title":                      m.Title,
			"status":                     m.Status,
			"shipment_card_expenses":     m.ShipmentCardExpenses,
			"clark_installment_expenses": m.ClarkInstallmentExpenses,
			"other_expenses":             m.OtherExpenses,
			"reason_message":             m.ReasonMessage,
			"submitted_by":               m.SubmittedBy,
			"accepted_at":                m.AcceptedAt,
			"version":                    m.Version,
			"updated_at":                 m.UpdatedAt,
		})
	return checkVersioned(result)
}

// ReplaceItems deletes and reinserts the delivered line items
func (r *GormShipmentRepository) ReplaceItems(ctx context.Context, s *shipment.Shipment) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("shipment_id = ?", s.ID).Delete(&models.ShipmentProductModel{}).Error; err != nil {
		return err
	}
	items := models.ShipmentProductModelsFromDomain(s)
	if len(items) == 0 {
		return nil
	}
	return db.CreateInBatches(items, 100).Error
}

// ReplaceExpenses deletes and reinserts the itemized expenses
func (r *GormShipmentRepository) ReplaceExpenses(ctx context.Context, s *shipment.Shipment) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("shipment_id = ?", s.ID).Delete(&models.ShipmentExpenseModel{}).Error; err != nil {
		return err
	}
	return r.insertExpenses(db, s)
}

func (r *GormShipmentRepository) insertExpenses(db *gorm.DB, s *shipment.Shipment) error {
	expenses := models.ShipmentExpenseModelsFromDomain(s)
	if len(expenses) == 0 {
		return nil
	}
	return db.CreateInBatches(expenses, 100).Error
}

// Ensure GormShipmentRepository implements ShipmentRepository
var _ shipment.ShipmentRepository = (*GormShipmentRepository)(nil)
