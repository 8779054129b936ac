package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
)

// InventoryHandler exposes the read side of an inventory's money and stock
type InventoryHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledgerService *inventoryapp.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledgerService: ledgerService}
}

// GetBalance godoc
//
//	@Summary	Current money balance of an inventory
//	@Tags		inventories
//	@Router		/inventories/{id}/balance [get]
func (h *InventoryHandler) GetBalance(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// ListProductUnits godoc
//
//	@Summary	Product units stocked in an inventory
//	@Tags		inventories
//	@Router		/inventories/{id}/product-units [get]
func (h *InventoryHandler) ListProductUnits(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	units, err := h.ledgerService.ListProductUnits(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}
