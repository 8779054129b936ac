package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/report"
)

// ===================== Request DTOs =====================

// ProductCountRequest is the counted quantity of one product unit
type ProductCountRequest struct {
	ProductUnitID uuid.UUID       `json:"productUnitId" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"decimal_gte0"`
}

// SubmitReportRequest creates a report or resubmits one after requested changes
type SubmitReportRequest struct {
	Title              string                `json:"title" binding:"max=200"`
	CurrentMoneyAmount decimal.Decimal       `json:"currentMoneyAmount" binding:"decimal_gte0"`
	Products           []ProductCountRequest `json:"products" binding:"required,min=1,dive"`
}

// ReasonRequest carries an admin's rejection reason
type ReasonRequest struct {
	ReasonMessage string `json:"reasonMessage" binding:"required,min=1,max=1000"`
}

// SubmitDepositRequest records the banked cash and its receipt
type SubmitDepositRequest struct {
	DepositMoneyAmount decimal.Decimal `json:"depositMoneyAmount" binding:"decimal_gte0"`
	DepositImageID     uuid.UUID       `json:"depositImageId" binding:"required"`
}

// ListFilter represents filter options for the report list
type ListFilter struct {
	Status      string     `form:"status" binding:"omitempty,oneof=IN_REVIEW REQUESTED_CHANGES PENDING_DEPOSIT IN_PENDING_DEPOSIT_REVIEW ACCEPTED"`
	InventoryID *uuid.UUID `form:"inventoryId"`
	UserID      *uuid.UUID `form:"userId"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by" binding:"omitempty,oneof=created_at updated_at status"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StatisticsFilter selects the statistics period
type StatisticsFilter struct {
	Duration    string     `form:"duration" binding:"omitempty,oneof=DAY WEEK MONTH YEAR"`
	InventoryID *uuid.UUID `form:"inventoryId"`
}

// ===================== Response DTOs =====================

// LineItemResponse is a report line item in API responses
type LineItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductUnitID    uuid.UUID       `json:"productUnitId"`
	ProductName      string          `json:"productName"`
	OriginalQuantity decimal.Decimal `json:"originalQuantity"`
	Quantity         decimal.Decimal `json:"quantity"`
	PiecesPerPallet  decimal.Decimal `json:"piecesPerPallet"`
	Pallets          decimal.Decimal `json:"pallets"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	SoldUnits        decimal.Decimal `json:"soldUnits"`
	SoldUnitsAmount  decimal.Decimal `json:"soldUnitsAmount"`
}

// ReportResponse is a report in API responses
type ReportResponse struct {
	ID                        uuid.UUID          `json:"id"`
	InventoryID               uuid.UUID          `json:"inventoryId"`
	UserID                    uuid.UUID          `json:"userId"`
	Title                     string             `json:"title"`
	Status                    string             `json:"status"`
	CurrentMoneyAmount        decimal.Decimal    `json:"currentMoneyAmount"`
	ExpectedSelledMoneyAmount decimal.Decimal    `json:"expectedSelledMoneyAmount"`
	TotalExpensesMoneyAmount  decimal.Decimal    `json:"totalExpensesMoneyAmount"`
	NetMoneyAmount            decimal.Decimal    `json:"netMoneyAmount"`
	RealNetMoneyAmount        decimal.Decimal    `json:"realNetMoneyAmount"`
	BrokenMoneyAmount         decimal.Decimal    `json:"brokenMoneyAmount"`
	BrokenRate                decimal.Decimal    `json:"brokenRate"`
	DepositMoneyAmount        *decimal.Decimal   `json:"depositMoneyAmount,omitempty"`
	DepositImageID            *uuid.UUID         `json:"depositImageId,omitempty"`
	ReasonMessage             string             `json:"reasonMessage,omitempty"`
	ReviewedBy                *uuid.UUID         `json:"reviewedBy,omitempty"`
	AcceptedAt                *time.Time         `json:"acceptedAt,omitempty"`
	AllowedActions            []string           `json:"allowedActions"`
	Products                  []LineItemResponse `json:"products,omitempty"`
	CreatedAt                 time.Time          `json:"createdAt"`
	UpdatedAt                 time.Time          `json:"updatedAt"`
	Version                   int                `json:"version"`
}

// ProductStatisticResponse aggregates one product over a period
type ProductStatisticResponse struct {
	Name              string          `json:"name"`
	Count             decimal.Decimal `json:"count"`
	Amount            decimal.Decimal `json:"amount"`
	BrokenRate        decimal.Decimal `json:"brokenRate"`
	BrokenMoneyAmount decimal.Decimal `json:"brokenMoneyAmount"`
}

// StatisticsResponse summarises reports created in a period
type StatisticsResponse struct {
	Duration               string                     `json:"duration"`
	Since                  time.Time                  `json:"since"`
	TotalProducts          decimal.Decimal            `json:"totalProducts"`
	TotalAmount            decimal.Decimal            `json:"totalAmount"`
	TotalBrokenRate        decimal.Decimal            `json:"totalBrokenRate"`
	TotalBrokenMoneyAmount decimal.Decimal            `json:"totalBrokenMoneyAmount"`
	Products               []ProductStatisticResponse `json:"products"`
}

// ===================== Conversion Functions =====================

// ToLineItemResponses converts report line items to responses
func ToLineItemResponses(items []report.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, item := range items {
		out[i] = LineItemResponse{
			ID:               item.ID,
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
		}
	}
	return out
}

// ToReportResponse converts a domain report to a response DTO
func ToReportResponse(r *report.Report) ReportResponse {
	actions := report.Transitions.Actions(r.Status)
	allowed := make([]string, len(actions))
	for i, a := range actions {
		allowed[i] = string(a)
	}
	return ReportResponse{
		ID:                        r.ID,
		InventoryID:               r.InventoryID,
		UserID:                    r.CreatedBy,
		Title:                     r.Title,
		Status:                    string(r.Status),
		CurrentMoneyAmount:        r.CurrentMoneyAmount,
		ExpectedSelledMoneyAmount: r.ExpectedSoldMoneyAmount,
		TotalExpensesMoneyAmount:  r.TotalExpensesMoneyAmount,
		NetMoneyAmount:            r.NetMoneyAmount,
		RealNetMoneyAmount:        r.RealNetMoneyAmount,
		BrokenMoneyAmount:         r.BrokenMoneyAmount,
		BrokenRate:                r.BrokenRate,
		DepositMoneyAmount:        r.DepositMoneyAmount,
		DepositImageID:            r.DepositImageID,
		ReasonMessage:             r.ReasonMessage,
		ReviewedBy:                r.ReviewedBy,
		AcceptedAt:                r.AcceptedAt,
		AllowedActions:            allowed,
		Products:                  ToLineItemResponses(r.Items),
		CreatedAt:                 r.CreatedAt,
		UpdatedAt:                 r.UpdatedAt,
		Version:                   r.Version,
	}
}

// ToStatisticsResponse converts aggregated statistics to a response DTO
func ToStatisticsResponse(d report.Duration, since time.Time, s report.Statistics) StatisticsResponse {
	products := make([]ProductStatisticResponse, len(s.Products))
	for i, p := range s.Products {
		products[i] = ProductStatisticResponse{
			Name:              p.Name,
			Count:             p.Count,
			Amount:            p.Amount,
			BrokenRate:        p.BrokenRate,
			BrokenMoneyAmount: p.BrokenMoneyAmount,
		}
	}
	return StatisticsResponse{
		Duration:               string(d),
		Since:                  since,
		TotalProducts:          s.TotalProducts,
		TotalAmount:            s.TotalAmount,
		TotalBrokenRate:        s.TotalBrokenRate,
		TotalBrokenMoneyAmount: s.TotalBrokenMoneyAmount,
		Products:               products,
	}
}

func toCounts(products []ProductCountRequest) []report.Count {
	counts := make([]report.Count, len(products))
	for i, p := range products {
		counts[i] = report.Count{ProductUnitID: p.ProductUnitID, Quantity: p.Quantity}
	}
	return counts
}
