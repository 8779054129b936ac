package file

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// MaxFileSize is the largest receipt image accepted (20MB)
const MaxFileSize = 20 * 1024 * 1024

// Category tells which workflow a file may be attached to
type Category string

const (
	CategoryReportDeposit Category = "REPORT_DEPOSIT"
	CategoryGlobal        Category = "GLOBAL"
)

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	return c == CategoryReportDeposit || c == CategoryGlobal
}

// Status tracks the upload lifecycle of a file
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusUploaded Status = "UPLOADED"
)

// allowedContentTypes is the whitelist for receipt uploads
var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// File is an uploaded object (a deposit receipt image) tracked by ID.
// A file can be associated with at most one record; once used it cannot be reused.
type File struct {
	shared.InventoryAggregateRoot
	Category    Category
	Status      Status
	FileName    string
	ContentType string
	FileSize    int64
	StorageKey  string
	Used        bool
	UsedBy      *uuid.UUID
}

// NewFile creates a file record in pending status
func NewFile(inventoryID, uploadedBy uuid.UUID, category Category, fileName, contentType string, size int64) (*File, error) {
	if !category.IsValid() {
		return nil, shared.InvalidInputf("unknown file category %q", category)
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" || len(fileName) > 255 {
		return nil, shared.InvalidInputf("file name must be between 1 and 255 characters")
	}
	if size <= 0 || size > MaxFileSize {
		return nil, shared.InvalidInputf("file size must be between 1 byte and %d bytes", MaxFileSize)
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !allowedContentTypes[contentType] {
		return nil, shared.InvalidInputf("content type %q is not allowed", contentType)
	}

	f := &File{
		InventoryAggregateRoot: shared.NewInventoryAggregateRoot(inventoryID, uploadedBy),
		Category:               category,
		Status:                 StatusPending,
		FileName:               fileName,
		ContentType:            contentType,
		FileSize:               size,
	}
	f.StorageKey = storageKey(f)
	return f, nil
}

func storageKey(f *File) string {
	ext := strings.ToLower(filepath.Ext(f.FileName))
	return strings.ToLower(string(f.Category)) + "/" + f.InventoryID.String() + "/" + f.ID.String() + ext
}

// ConfirmUploaded marks the object as present in storage
func (f *File) ConfirmUploaded() error {
	if f.Status == StatusUploaded {
		return shared.Conflictf("file %s is already confirmed", f.ID)
	}
	f.Status = StatusUploaded
	f.IncrementVersion()
	return nil
}

// IsAvailableFor reports whether the file exists, has the category and is not yet associated
func (f *File) IsAvailableFor(category Category) bool {
	return f.Status == StatusUploaded && f.Category == category && !f.Used
}

// MarkUsed associates the file with a record
func (f *File) MarkUsed(ownerID uuid.UUID) error {
	if f.Used {
		return shared.Conflictf("file %s is already associated with another record", f.ID)
	}
	if f.Status != StatusUploaded {
		return shared.NotFoundf("file %s has not been uploaded", f.ID)
	}
	f.Used = true
	f.UsedBy = &ownerID
	f.IncrementVersion()
	return nil
}
