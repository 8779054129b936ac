package shipment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/expense"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shipment"
)

// ===================== Request DTOs =====================

// ShipmentExpenseRequest is an upfront itemized cost of a shipment
type ShipmentExpenseRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gte0"`
	Description string          `json:"description" binding:"max=1000"`
	Tag         string          `json:"tag" binding:"omitempty,oneof=SHIPMENT_CARD CLARK_INSTALLMENT SALARY RENT UTILITIES OTHER"`
}

// CreateShipmentRequest plans a shipment for an inventory
type CreateShipmentRequest struct {
	InventoryID      uuid.UUID                `json:"inventoryId" binding:"required"`
	Title            string                   `json:"title" binding:"required,min=1,max=200"`
	ShipmentExpenses []ShipmentExpenseRequest `json:"shipmentExpenses" binding:"omitempty,dive"`
}

// UpdateShipmentRequest retitles a shipment and optionally replaces its itemized expenses
type UpdateShipmentRequest struct {
	Title            string                   `json:"title" binding:"max=200"`
	ShipmentExpenses []ShipmentExpenseRequest `json:"shipmentExpenses" binding:"omitempty,dive"`
}

// DeliveredProductRequest is a delivered quantity of one product unit
type DeliveredProductRequest struct {
	ProductUnitID uuid.UUID       `json:"productUnitId" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
}

// SubmitForReviewRequest reports what arrived and what it cost
type SubmitForReviewRequest struct {
	Products                 []DeliveredProductRequest `json:"products" binding:"required,min=1,dive"`
	ShipmentCardExpenses     decimal.Decimal           `json:"shipmentCardExpenses" binding:"decimal_gte0"`
	ClarkInstallmentExpenses decimal.Decimal           `json:"clarkInstallmentExpenses" binding:"decimal_gte0"`
	OtherExpenses            decimal.Decimal           `json:"otherExpenses" binding:"decimal_gte0"`
}

// RequestUpdateRequest carries the admin's review message
type RequestUpdateRequest struct {
	ReviewMessage string `json:"reviewMessage" binding:"required,min=1,max=1000"`
}

// ListFilter represents filter options for the shipment list
type ListFilter struct {
	Status      string     `form:"status" binding:"omitempty,oneof=PENDING PENDING_REVIEW ACCEPTED"`
	InventoryID *uuid.UUID `form:"inventoryId"`
	Search      string     `form:"search"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by" binding:"omitempty,oneof=created_at updated_at status title"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ===================== Response DTOs =====================

// LineItemResponse is a delivered product in API responses
type LineItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductUnitID   uuid.UUID       `json:"productUnitId"`
	Quantity        decimal.Decimal `json:"quantity"`
	PiecesPerPallet decimal.Decimal `json:"piecesPerPallet"`
	Pallets         decimal.Decimal `json:"pallets"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
}

// ExpenseResponse is an itemized shipment expense in API responses
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Tag         string          `json:"tag"`
}

// ShipmentResponse is a shipment in API responses
type ShipmentResponse struct {
	ID                       uuid.UUID          `json:"id"`
	InventoryID              uuid.UUID          `json:"inventoryId"`
	CreatedBy                uuid.UUID          `json:"createdBy"`
	Title                    string             `json:"title"`
	Status                   string             `json:"status"`
	ShipmentCardExpenses     decimal.Decimal    `json:"shipmentCardExpenses"`
	ClarkInstallmentExpenses decimal.Decimal    `json:"clarkInstallmentExpenses"`
	OtherExpenses            decimal.Decimal    `json:"otherExpenses"`
	TotalExpenses            decimal.Decimal    `json:"totalExpenses"`
	ItemizedExpensesTotal    decimal.Decimal    `json:"itemizedExpensesTotal"`
	ReviewMessage            string             `json:"reviewMessage,omitempty"`
	SubmittedBy              *uuid.UUID         `json:"submittedBy,omitempty"`
	AcceptedAt               *time.Time         `json:"acceptedAt,omitempty"`
	AllowedActions           []string           `json:"allowedActions"`
	Products                 []LineItemResponse `json:"products"`
	ShipmentExpenses         []ExpenseResponse  `json:"shipmentExpenses"`
	CreatedAt                time.Time          `json:"createdAt"`
	UpdatedAt                time.Time          `json:"updatedAt"`
	Version                  int                `json:"version"`
}

// CountResponse is the number of shipments matching a filter
type CountResponse struct {
	Count int64 `json:"count"`
}

// ===================== Conversion Functions =====================

// ToShipmentResponse converts a domain shipment to a response DTO
func ToShipmentResponse(s *shipment.Shipment) ShipmentResponse {
	actions := shipment.Transitions.Actions(s.Status)
	allowed := make([]string, len(actions))
	for i, a := range actions {
		allowed[i] = string(a)
	}

	items := make([]LineItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = LineItemResponse{
			ID:              item.ID,
			ProductUnitID:   item.ProductUnitID,
			Quantity:        item.Quantity,
			PiecesPerPallet: item.PiecesPerPallet,
			Pallets:         item.Pallets,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      item.TotalPrice,
		}
	}

	expenses := make([]ExpenseResponse, len(s.Expenses))
	for i, e := range s.Expenses {
		expenses[i] = ExpenseResponse{
			ID:          e.ID,
			Name:        e.Name,
			Amount:      e.Amount,
			Description: e.Description,
			Tag:         string(e.Tag),
		}
	}

	return ShipmentResponse{
		ID:                       s.ID,
		InventoryID:              s.InventoryID,
		CreatedBy:                s.CreatedBy,
		Title:                    s.Title,
		Status:                   string(s.Status),
		ShipmentCardExpenses:     s.Costs.ShipmentCard,
		ClarkInstallmentExpenses: s.Costs.ClarkInstallment,
		OtherExpenses:            s.Costs.Other,
		TotalExpenses:            s.Costs.Total(),
		ItemizedExpensesTotal:    s.ItemizedTotal(),
		ReviewMessage:            s.ReasonMessage,
		SubmittedBy:              s.SubmittedBy,
		AcceptedAt:               s.AcceptedAt,
		AllowedActions:           allowed,
		Products:                 items,
		ShipmentExpenses:         expenses,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
		Version:                  s.Version,
	}
}

func toItemizedExpenses(reqs []ShipmentExpenseRequest) ([]shipment.ItemizedExpense, error) {
	if reqs == nil {
		return nil, nil
	}
	out := make([]shipment.ItemizedExpense, len(reqs))
	for i, r := range reqs {
		tag, err := expense.ParseTag(r.Tag)
		if err != nil {
			return nil, err
		}
		out[i] = shipment.ItemizedExpense{
			Name:        r.Name,
			Amount:      r.Amount,
			Description: r.Description,
			Tag:         tag,
		}
	}
	return out, nil
}

func toDeliveries(reqs []DeliveredProductRequest) ([]shipment.Delivery, []uuid.UUID) {
	deliveries := make([]shipment.Delivery, len(reqs))
	ids := make([]uuid.UUID, len(reqs))
	for i, r := range reqs {
		deliveries[i] = shipment.Delivery{ProductUnitID: r.ProductUnitID, Quantity: r.Quantity}
		ids[i] = r.ProductUnitID
	}
	return deliveries, ids
}

func (f ListFilter) toDomain() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.InventoryID != nil {
		filter.Filters["inventory_id"] = *f.InventoryID
	}
	return filter.Normalize()
}
