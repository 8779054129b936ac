package handler

import (
	"github.com/gin-gonic/gin"
	shipmentapp "github.com/stockflow/backend/internal/application/shipment"
)

// ShipmentHandler handles inbound shipment endpoints
type ShipmentHandler struct {
	BaseHandler
	shipmentService *shipmentapp.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipmentService *shipmentapp.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipmentService: shipmentService}
}

// Create godoc
//
//	@Summary	Plan a shipment for an inventory
//	@Tags		shipments
//	@Accept		json
//	@Produce	json
//	@Param		request	body		shipmentapp.CreateShipmentRequest	true	"Shipment"
//	@Success	201		{object}	dto.Response{data=shipmentapp.ShipmentResponse}
//	@Failure	409		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/shipments [post]
func (h *ShipmentHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req shipmentapp.CreateShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	shipment, err := h.shipmentService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, shipment)
}

// Update godoc
//
//	@Summary	Retitle a shipment or replace its itemized expenses
//	@Tags		shipments
//	@Router		/shipments/{id} [patch]
func (h *ShipmentHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req shipmentapp.UpdateShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	shipment, err := h.shipmentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// SubmitForReview godoc
//
//	@Summary	Report delivered products and shipment costs
//	@Tags		shipments
//	@Router		/shipments/{id}/submit-for-review [post]
func (h *ShipmentHandler) SubmitForReview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req shipmentapp.SubmitForReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	shipment, err := h.shipmentService.SubmitForReview(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// RequestUpdate godoc
//
//	@Summary	Send a shipment back to the worker
//	@Tags		shipments
//	@Router		/shipments/{id}/request-update [patch]
func (h *ShipmentHandler) RequestUpdate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req shipmentapp.RequestUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	shipment, err := h.shipmentService.RequestUpdate(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// Accept godoc
//
//	@Summary	Accept a shipment, add stock and deduct its costs
//	@Tags		shipments
//	@Router		/shipments/{id}/accept [patch]
func (h *ShipmentHandler) Accept(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	shipment, err := h.shipmentService.Accept(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// List godoc
//
//	@Summary	List shipments
//	@Tags		shipments
//	@Router		/shipments [get]
func (h *ShipmentHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter shipmentapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	shipments, total, err := h.shipmentService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, shipments, total, page, pageSize)
}

// Count godoc
//
//	@Summary	Count shipments matching the list filter
//	@Tags		shipments
//	@Router		/shipments/count [get]
func (h *ShipmentHandler) Count(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter shipmentapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	count, err := h.shipmentService.Count(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// GetByID godoc
//
//	@Summary	Get a shipment
//	@Tags		shipments
//	@Router		/shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	shipment, err := h.shipmentService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}
