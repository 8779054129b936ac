package handler

import (
	"github.com/gin-gonic/gin"
	fileapp "github.com/stockflow/backend/internal/application/file"
)

// FileHandler handles deposit receipt uploads
type FileHandler struct {
	BaseHandler
	fileService *fileapp.FileService
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(fileService *fileapp.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// InitiateDepositReceipt godoc
//
//	@Summary		Start a deposit receipt upload
//	@Description	Creates an unused file record and returns a presigned PUT URL
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			request	body		fileapp.InitiateUploadRequest	true	"File metadata"
//	@Success		201		{object}	dto.Response{data=fileapp.InitiateUploadResponse}
//	@Security		BearerAuth
//	@Router			/files/deposit-receipts [post]
func (h *FileHandler) InitiateDepositReceipt(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req fileapp.InitiateUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.fileService.InitiateDepositReceipt(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ConfirmUpload godoc
//
//	@Summary	Confirm the bytes reached object storage
//	@Tags		files
//	@Router		/files/{id}/confirm [post]
func (h *FileHandler) ConfirmUpload(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	file, err := h.fileService.ConfirmUpload(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}

// GetByID godoc
//
//	@Summary	Get file metadata and a download URL
//	@Tags		files
//	@Router		/files/{id} [get]
func (h *FileHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	file, err := h.fileService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}
