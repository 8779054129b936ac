package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/expense"
)

// ===================== Request DTOs =====================

// CreateExpenseRequest records a new expense. InventoryID is required for
// admins; workers always record against their own inventory.
type CreateExpenseRequest struct {
	InventoryID *uuid.UUID      `json:"inventoryId"`
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=1000"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Tag         string          `json:"tag" binding:"omitempty,oneof=SHIPMENT_CARD CLARK_INSTALLMENT SALARY RENT UTILITIES OTHER"`
}

// UpdateExpenseRequest replaces the editable fields of an unreconciled expense
type UpdateExpenseRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=1000"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Tag         string          `json:"tag" binding:"omitempty,oneof=SHIPMENT_CARD CLARK_INSTALLMENT SALARY RENT UTILITIES OTHER"`
}

// ListFilter represents filter options for the expense list
type ListFilter struct {
	InventoryID *uuid.UUID `form:"inventoryId"`
	ReportID    *uuid.UUID `form:"reportId"`
	Tag         string     `form:"tag" binding:"omitempty,oneof=SHIPMENT_CARD CLARK_INSTALLMENT SALARY RENT UTILITIES OTHER"`
	Applied     *bool      `form:"applied"`
	Search      string     `form:"search"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by" binding:"omitempty,oneof=created_at amount name"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ===================== Response DTOs =====================

// ExpenseResponse is an expense in API responses
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	InventoryID uuid.UUID       `json:"inventoryId"`
	UserID      uuid.UUID       `json:"userId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Tag         string          `json:"tag"`
	ReportID    *uuid.UUID      `json:"reportId,omitempty"`
	Applied     bool            `json:"applied"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ToExpenseResponse converts a domain expense to a response DTO
func ToExpenseResponse(e *expense.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		InventoryID: e.InventoryID,
		UserID:      e.CreatedBy,
		Name:        e.Name,
		Description: e.Description,
		Amount:      e.Amount,
		Tag:         string(e.Tag),
		ReportID:    e.ReportID,
		Applied:     e.Applied,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
