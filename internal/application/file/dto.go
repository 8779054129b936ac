package file

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/file"
)

// InitiateUploadRequest describes the file the client is about to upload
type InitiateUploadRequest struct {
	FileName    string `json:"fileName" binding:"required,min=1,max=255"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required,min=1"`
}

// InitiateUploadResponse carries the new file ID and where to PUT the bytes
type InitiateUploadResponse struct {
	FileID     uuid.UUID `json:"fileId"`
	StorageKey string    `json:"key"`
	UploadURL  string    `json:"uploadUrl"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// FileResponse is file metadata in API responses
type FileResponse struct {
	ID                   uuid.UUID  `json:"id"`
	InventoryID          uuid.UUID  `json:"inventoryId"`
	Category             string     `json:"category"`
	Status               string     `json:"status"`
	FileName             string     `json:"fileName"`
	ContentType          string     `json:"contentType"`
	FileSize             int64      `json:"fileSize"`
	Key                  string     `json:"key"`
	IsUsed               bool       `json:"isUsed"`
	UsedBy               *uuid.UUID `json:"usedBy,omitempty"`
	DownloadURL          string     `json:"downloadUrl,omitempty"`
	DownloadURLExpiresAt *time.Time `json:"downloadUrlExpiresAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// ToFileResponse converts a domain file to a response DTO
func ToFileResponse(f *file.File) FileResponse {
	return FileResponse{
		ID:          f.ID,
		InventoryID: f.InventoryID,
		Category:    string(f.Category),
		Status:      string(f.Status),
		FileName:    f.FileName,
		ContentType: f.ContentType,
		FileSize:    f.FileSize,
		Key:         f.StorageKey,
		IsUsed:      f.Used,
		UsedBy:      f.UsedBy,
		CreatedAt:   f.CreatedAt,
	}
}
