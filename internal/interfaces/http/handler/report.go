package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/stockflow/backend/internal/application/report"
)

// ReportHandler handles the daily reconciliation report endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Create godoc
//
//	@Summary		Submit a daily report
//	@Description	Worker submits counted quantities and cash for their inventory
//	@Tags			reports
//	@Accept			json
//	@Produce		json
//	@Param			request	body		reportapp.SubmitReportRequest	true	"Counted products and cash"
//	@Success		201		{object}	dto.Response{data=reportapp.ReportResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		403		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/report [post]
func (h *ReportHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req reportapp.SubmitReportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.reportService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, report)
}

// UpdateRequested godoc
//
//	@Summary		Resubmit a report after requested changes
//	@Tags			reports
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Report ID"
//	@Param			request	body		reportapp.SubmitReportRequest	true	"Corrected counts"
//	@Success		200		{object}	dto.Response{data=reportapp.ReportResponse}
//	@Failure		422		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/report/{id}/update-requested [put]
func (h *ReportHandler) UpdateRequested(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req reportapp.SubmitReportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.reportService.UpdateRequested(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// RequestChanges godoc
//
//	@Summary		Send a report back to the worker
//	@Tags			reports
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Report ID"
//	@Param			request	body		reportapp.ReasonRequest	true	"Reason"
//	@Success		200		{object}	dto.Response{data=reportapp.ReportResponse}
//	@Failure		422		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/report/{id}/request-changes [patch]
func (h *ReportHandler) RequestChanges(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req reportapp.ReasonRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.reportService.RequestChanges(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// AcceptLevelOne godoc
//
//	@Summary		Accept counts and ask for the deposit
//	@Tags			reports
//	@Produce		json
//	@Param			id	path		string	true	"Report ID"
//	@Success		200	{object}	dto.Response{data=reportapp.ReportResponse}
//	@Failure		422	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/report/{id}/accept-level-one [patch]
func (h *ReportHandler) AcceptLevelOne(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	report, err := h.reportService.AcceptLevelOne(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// SubmitDeposit godoc
//
//	@Summary		Submit the bank deposit of a report
//	@Tags			reports
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Report ID"
//	@Param			request	body		reportapp.SubmitDepositRequest	true	"Deposit amount and receipt file"
//	@Success		200		{object}	dto.Response{data=reportapp.ReportResponse}
//	@Failure		404		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/report/{id}/submit-deposit [patch]
func (h *ReportHandler) SubmitDeposit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req reportapp.SubmitDepositRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.reportService.SubmitDeposit(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// RequestChangesAtDeposit godoc
//
//	@Summary		Reject a submitted deposit
//	@Tags			reports
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Report ID"
//	@Param			request	body		reportapp.ReasonRequest	true	"Reason"
//	@Success		200		{object}	dto.Response{data=reportapp.ReportResponse}
//	@Security		BearerAuth
//	@Router			/report/{id}/request-changes-at-deposit [patch]
func (h *ReportHandler) RequestChangesAtDeposit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req reportapp.ReasonRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.reportService.RequestChangesAtDeposit(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// FinalAccept godoc
//
//	@Summary		Accept a report and settle the inventory
//	@Description	Applies the net amount to the inventory balance, marks linked expenses applied and resets product units to the counted quantities
//	@Tags			reports
//	@Produce		json
//	@Param			id	path		string	true	"Report ID"
//	@Success		200	{object}	dto.Response{data=reportapp.ReportResponse}
//	@Failure		409	{object}	dto.Response
//	@Failure		422	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/report/{id}/final-acceptance [patch]
func (h *ReportHandler) FinalAccept(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	report, err := h.reportService.FinalAccept(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// List godoc
//
//	@Summary		List reports
//	@Description	Workers only see their inventory's reports
//	@Tags			reports
//	@Produce		json
//	@Param			status		query		string	false	"Status filter"
//	@Param			inventoryId	query		string	false	"Inventory filter (admin)"
//	@Param			page		query		int		false	"Page number"		default(1)
//	@Param			page_size	query		int		false	"Page size"			default(20)
//	@Success		200			{object}	dto.Response{data=[]reportapp.ReportResponse}
//	@Security		BearerAuth
//	@Router			/report [get]
func (h *ReportHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter reportapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	reports, total, err := h.reportService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, reports, total, page, pageSize)
}

// Statistics godoc
//
//	@Summary		Report statistics for a period
//	@Tags			reports
//	@Produce		json
//	@Param			duration	query		string	false	"DAY, WEEK, MONTH or YEAR"	default(MONTH)
//	@Param			inventoryId	query		string	false	"Inventory filter (admin)"
//	@Success		200			{object}	dto.Response{data=reportapp.StatisticsResponse}
//	@Security		BearerAuth
//	@Router			/report/statistics [get]
func (h *ReportHandler) Statistics(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter reportapp.StatisticsFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	stats, err := h.reportService.Statistics(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// GetByID godoc
//
//	@Summary		Get a report with its line items
//	@Tags			reports
//	@Produce		json
//	@Param			id	path		string	true	"Report ID"
//	@Success		200	{object}	dto.Response{data=reportapp.ReportResponse}
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/report/{id} [get]
func (h *ReportHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
