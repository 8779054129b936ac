package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/report"
)

// ReportModel is the persistence model for the Report aggregate header.
// At most one non-accepted report may exist per inventory.
type ReportModel struct {
	AggregateModel
	InventoryID              uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_reports_active_inventory,where:status <> 'ACCEPTED'"`
	CreatedBy                uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title                    string           `gorm:"type:varchar(200)"`
	Status                   string           `gorm:"type:varchar(30);not null;index"`
	CurrentMoneyAmount       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ExpectedSoldMoneyAmount  decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TotalExpensesMoneyAmount decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	NetMoneyAmount           decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	RealNetMoneyAmount       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	BrokenMoneyAmount        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	BrokenRate               decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	DepositMoneyAmount       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	DepositImageID           *uuid.UUID       `gorm:"type:uuid"`
	ReasonMessage            string           `gorm:"type:text"`
	ReviewedBy               *uuid.UUID       `gorm:"type:uuid"`
	AcceptedAt               *time.Time
}

// TableName returns the table name for GORM
func (ReportModel) TableName() string {
	return "reports"
}

// ToDomain converts the persistence model to a domain Report without line items
func (m *ReportModel) ToDomain() *report.Report {
	r := &report.Report{
		Title:              m.Title,
		Status:             report.Status(m.Status),
		CurrentMoneyAmount: m.CurrentMoneyAmount,
		Figures: report.Figures{
			ExpectedSoldMoneyAmount:  m.ExpectedSoldMoneyAmount,
			TotalExpensesMoneyAmount: m.TotalExpensesMoneyAmount,
			NetMoneyAmount:           m.NetMoneyAmount,
			RealNetMoneyAmount:       m.RealNetMoneyAmount,
			BrokenMoneyAmount:        m.BrokenMoneyAmount,
			BrokenRate:               m.BrokenRate,
		},
		DepositMoneyAmount: m.DepositMoneyAmount,
		DepositImageID:     m.DepositImageID,
		ReasonMessage:      m.ReasonMessage,
		ReviewedBy:         m.ReviewedBy,
		AcceptedAt:         m.AcceptedAt,
	}
	r.BaseAggregateRoot = m.root()
	r.InventoryID = m.InventoryID
	r.CreatedBy = m.CreatedBy
	return r
}

// FromDomain populates the persistence model from a domain Report
func (m *ReportModel) FromDomain(r *report.Report) {
	m.setRoot(r.BaseAggregateRoot)
	m.InventoryID = r.InventoryID
	m.CreatedBy = r.CreatedBy
	m.Title = r.Title
	m.Status = string(r.Status)
	m.CurrentMoneyAmount = r.CurrentMoneyAmount
	m.ExpectedSoldMoneyAmount = r.ExpectedSoldMoneyAmount
	m.TotalExpensesMoneyAmount = r.TotalExpensesMoneyAmount
	m.NetMoneyAmount = r.NetMoneyAmount
	m.RealNetMoneyAmount = r.RealNetMoneyAmount
	m.BrokenMoneyAmount = r.BrokenMoneyAmount
	m.BrokenRate = r.BrokenRate
	m.DepositMoneyAmount = r.DepositMoneyAmount
	m.DepositImageID = r.DepositImageID
	m.ReasonMessage = r.ReasonMessage
	m.ReviewedBy = r.ReviewedBy
	m.AcceptedAt = r.AcceptedAt
}

// ReportModelFromDomain creates a new persistence model from a domain Report
func ReportModelFromDomain(r *report.Report) *ReportModel {
	m := &ReportModel{}
	m.FromDomain(r)
	return m
}

// ReportProductModel is one counted product unit of a report.
type ReportProductModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReportID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductUnitID    uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	OriginalQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PiecesPerPallet  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Pallets          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SoldUnits        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SoldUnitsAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReportProductModel) TableName() string {
	return "report_products"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *ReportProductModel) ToDomain() report.LineItem {
	return report.LineItem{
		ID:               m.ID,
		ReportID:         m.ReportID,
		ProductUnitID:    m.ProductUnitID,
		ProductName:      m.ProductName,
		OriginalQuantity: m.OriginalQuantity,
		Quantity:         m.Quantity,
		PiecesPerPallet:  m.PiecesPerPallet,
		Pallets:          m.Pallets,
		UnitPrice:        m.UnitPrice,
		TotalPrice:       m.TotalPrice,
		SoldUnits:        m.SoldUnits,
		SoldUnitsAmount:  m.SoldUnitsAmount,
	}
}

// ReportProductModelsFromDomain converts a report's line items for insertion
func ReportProductModelsFromDomain(r *report.Report) []ReportProductModel {
	out := make([]ReportProductModel, len(r.Items))
	for i, item := range r.Items {
		out[i] = ReportProductModel{
			ID:               item.ID,
			ReportID:         r.ID,
			ProductUnitID:    item.ProductUnitID,
			ProductName:      item.ProductName,
			OriginalQuantity: item.OriginalQuantity,
			Quantity:         item.Quantity,
			PiecesPerPallet:  item.PiecesPerPallet,
			Pallets:          item.Pallets,
			UnitPrice:        item.UnitPrice,
			TotalPrice:       item.TotalPrice,
			SoldUnits:        item.SoldUnits,
			SoldUnitsAmount:  item.SoldUnitsAmount,
			CreatedAt:        r.UpdatedAt,
		}
	}
	return out
}
