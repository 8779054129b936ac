package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// BaseModel holds the id and timestamps every table has
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// AggregateModel adds the version column checked by optimistic updates
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
}

func (m *AggregateModel) setRoot(a shared.BaseAggregateRoot) {
	m.ID, m.CreatedAt, m.UpdatedAt = a.ID, a.CreatedAt, a.UpdatedAt
	m.Version = a.Version
}

// InventoryAggregateModel is the base of tables whose rows belong to one
// inventory and remember who created them
type InventoryAggregateModel struct {
	AggregateModel
	InventoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (m *InventoryAggregateModel) ownedRoot() shared.InventoryAggregateRoot {
	return shared.InventoryAggregateRoot{
		BaseAggregateRoot: m.root(),
		InventoryID:       m.InventoryID,
		CreatedBy:         m.CreatedBy,
	}
}

func (m *InventoryAggregateModel) setOwnedRoot(a shared.InventoryAggregateRoot) {
	m.setRoot(a.BaseAggregateRoot)
	m.InventoryID = a.InventoryID
	m.CreatedBy = a.CreatedBy
}
