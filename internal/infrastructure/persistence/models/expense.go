package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/expense"
)

// ExpenseModel is the persistence model for the Expense aggregate.
type ExpenseModel struct {
	InventoryAggregateModel
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Tag         string          `gorm:"type:varchar(30);not null;default:'OTHER';index"`
	ReportID    *uuid.UUID      `gorm:"type:uuid;index"`
	Applied     bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *expense.Expense {
	return &expense.Expense{
		InventoryAggregateRoot: m.ownedRoot(),
		Name:                   m.Name,
		Description:            m.Description,
		Amount:                 m.Amount,
		Tag:                    expense.Tag(m.Tag),
		ReportID:               m.ReportID,
		Applied:                m.Applied,
	}
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *expense.Expense) {
	m.setOwnedRoot(e.InventoryAggregateRoot)
	m.Name = e.Name
	m.Description = e.Description
	m.Amount = e.Amount
	m.Tag = string(e.Tag)
	m.ReportID = e.ReportID
	m.Applied = e.Applied
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense
func ExpenseModelFromDomain(e *expense.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}
