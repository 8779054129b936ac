package handler

import (
	"github.com/gin-gonic/gin"
	expenseapp "github.com/stockflow/backend/internal/application/expense"
)

// ExpenseHandler handles expense CRUD. Expenses linked to a report are read only.
type ExpenseHandler struct {
	BaseHandler
	expenseService *expenseapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *expenseapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// Create records an expense
//
//	@Router	/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req expenseapp.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// Update edits an unreconciled expense
//
//	@Router	/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req expenseapp.UpdateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete removes an unreconciled expense
//
//	@Router	/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// List returns expenses visible to the caller
//
//	@Router	/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter expenseapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	expenses, total, err := h.expenseService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, expenses, total, page, pageSize)
}

// GetByID returns one expense
//
//	@Router	/expenses/{id} [get]
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	expense, err := h.expenseService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}
