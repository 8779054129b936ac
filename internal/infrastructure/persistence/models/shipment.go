package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/expense"
	"github.com/stockflow/backend/internal/domain/shipment"
)

// ShipmentModel is the persistence model for the Shipment aggregate header.
// At most one non-accepted shipment may exist per inventory.
type ShipmentModel struct {
	AggregateModel
	InventoryID              uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_shipments_active_inventory,where:status <> 'ACCEPTED'"`
	CreatedBy                uuid.UUID       `gorm:"type:uuid;not null"`
	Title                    string          `gorm:"type:varchar(200);not null"`
	Status                   string          `gorm:"type:varchar(30);not null;index"`
	ShipmentCardExpenses     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ClarkInstallmentExpenses decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OtherExpenses            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReasonMessage            string          `gorm:"type:text"`
	SubmittedBy              *uuid.UUID      `gorm:"type:uuid"`
	AcceptedAt               *time.Time
	Items                    []ShipmentProductModel `gorm:"foreignKey:ShipmentID;references:ID"`
	Expenses                 []ShipmentExpenseModel `gorm:"foreignKey:ShipmentID;references:ID"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the persistence model, including loaded associations, to a domain Shipment
func (m *ShipmentModel) ToDomain() *shipment.Shipment {
	s := &shipment.Shipment{
		Title:  m.Title,
		Status: shipment.Status(m.Status),
		Costs: shipment.Costs{
			ShipmentCard:     m.ShipmentCardExpenses,
			ClarkInstallment: m.ClarkInstallmentExpenses,
			Other:            m.OtherExpenses,
		},
		ReasonMessage: m.ReasonMessage,
		SubmittedBy:   m.SubmittedBy,
		AcceptedAt:    m.AcceptedAt,
		Items:         make([]shipment.LineItem, len(m.Items)),
		Expenses:      make([]shipment.ItemizedExpense, len(m.Expenses)),
	}
	s.BaseAggregateRoot = m.root()
	s.InventoryID = m.InventoryID
	s.CreatedBy = m.CreatedBy
	for i := range m.Items {
		s.Items[i] = m.Items[i].ToDomain()
	}
	for i := range m.Expenses {
		s.Expenses[i] = m.Expenses[i].ToDomain()
	}
	return s
}

// FromDomain populates the header columns from a domain Shipment.
// Associations are written by the repository.
func (m *ShipmentModel) FromDomain(s *shipment.Shipment) {
	m.setRoot(s.BaseAggregateRoot)
	m.InventoryID = s.InventoryID
	m.CreatedBy = s.CreatedBy
	m.Title = s.Title
	m.Status = string(s.Status)
	m.ShipmentCardExpenses = s.Costs.ShipmentCard
	m.ClarkInstallmentExpenses = s.Costs.ClarkInstallment
	m.OtherExpenses = s.Costs.Other
	m.ReasonMessage = s.ReasonMessage
	m.SubmittedBy = s.SubmittedBy
	m.AcceptedAt = s.AcceptedAt
}

// ShipmentModelFromDomain creates a header model from a domain Shipment
func ShipmentModelFromDomain(s *shipment.Shipment) *ShipmentModel {
	m := &ShipmentModel{}
	m.FromDomain(s)
	return m
}

// ShipmentProductModel is one delivered product unit of a shipment.
type ShipmentProductModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	ShipmentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductUnitID   uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PiecesPerPallet decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Pallets         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ShipmentProductModel) TableName() string {
	return "shipment_products"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *ShipmentProductModel) ToDomain() shipment.LineItem {
	return shipment.LineItem{
		ID:              m.ID,
		ShipmentID:      m.ShipmentID,
		ProductUnitID:   m.ProductUnitID,
		Quantity:        m.Quantity,
		PiecesPerPallet: m.PiecesPerPallet,
		Pallets:         m.Pallets,
		UnitPrice:       m.UnitPrice,
		TotalPrice:      m.TotalPrice,
	}
}

// ShipmentExpenseModel is an itemized upfront cost of a shipment.
type ShipmentExpenseModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ShipmentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description string          `gorm:"type:text"`
	Tag         string          `gorm:"type:varchar(30);not null"`
}

// TableName returns the table name for GORM
func (ShipmentExpenseModel) TableName() string {
	return "shipment_expenses"
}

// ToDomain converts the persistence model to a domain ItemizedExpense
func (m *ShipmentExpenseModel) ToDomain() shipment.ItemizedExpense {
	return shipment.ItemizedExpense{
		ID:          m.ID,
		ShipmentID:  m.ShipmentID,
		Name:        m.Name,
		Amount:      m.Amount,
		Description: m.Description,
		Tag:         expense.Tag(m.Tag),
	}
}

// ShipmentProductModelsFromDomain converts a shipment's line items for insertion
func ShipmentProductModelsFromDomain(s *shipment.Shipment) []ShipmentProductModel {
	out := make([]ShipmentProductModel, len(s.Items))
	for i, item := range s.Items {
		out[i] = ShipmentProductModel{
			ID:              item.ID,
			ShipmentID:      s.ID,
			ProductUnitID:   item.ProductUnitID,
			Quantity:        item.Quantity,
			PiecesPerPallet: item.PiecesPerPallet,
			Pallets:         item.Pallets,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      item.TotalPrice,
		}
	}
	return out
}

// ShipmentExpenseModelsFromDomain converts a shipment's itemized expenses for insertion
func ShipmentExpenseModelsFromDomain(s *shipment.Shipment) []ShipmentExpenseModel {
	out := make([]ShipmentExpenseModel, len(s.Expenses))
	for i, e := range s.Expenses {
		out[i] = ShipmentExpenseModel{
			ID:          e.ID,
			ShipmentID:  s.ID,
			Name:        e.Name,
			Amount:      e.Amount,
			Description: e.Description,
			Tag:         string(e.Tag),
		}
	}
	return out
}
