package file

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/domain/file"
	"github.com/stockflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ObjectStorage is the object store holding uploaded files.
// It is implemented by the infrastructure layer (S3 or a compatible store).
type ObjectStorage interface {
	// GenerateUploadURL returns a presigned URL for uploading an object and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned URL for downloading an object and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an object
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object has been uploaded
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ServiceConfig holds presigned URL lifetimes
type ServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultServiceConfig returns the default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
	}
}

// FileService manages deposit receipt uploads
type FileService struct {
	fileRepo file.FileRepository
	storage  ObjectStorage
	config   ServiceConfig
	logger   *zap.Logger
}

// NewFileService creates a new FileService
func NewFileService(fileRepo file.FileRepository, storage ObjectStorage, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
		config:   DefaultServiceConfig(),
		logger:   logger,
	}
}

// SetConfig sets the service configuration
func (s *FileService) SetConfig(config ServiceConfig) {
	s.config = config
}

// InitiateDepositReceipt creates a pending REPORT_DEPOSIT file for the worker's
// inventory and returns a presigned upload URL
func (s *FileService) InitiateDepositReceipt(ctx context.Context, actor workflow.Actor, req InitiateUploadRequest) (*InitiateUploadResponse, error) {
	inventoryID, err := actor.AssignedInventory()
	if err != nil {
		return nil, err
	}

	f, err := file.NewFile(inventoryID, actor.UserID, file.CategoryReportDeposit, req.FileName, req.ContentType, req.FileSize)
	if err != nil {
		return nil, err
	}
	if err := s.fileRepo.Create(ctx, f); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, f.StorageKey, f.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate upload URL",
			zap.String("file_id", f.ID.String()),
			zap.Error(err),
		)
		_ = s.fileRepo.Delete(ctx, f.ID)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		FileID:     f.ID,
		StorageKey: f.StorageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmUpload verifies the object reached storage and marks the file uploaded
func (s *FileService) ConfirmUpload(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*FileResponse, error) {
	f, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, f.StorageKey)
	if err != nil {
		s.logger.Error("Failed to check object", zap.String("file_id", f.ID.String()), zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NotFoundf("file %s not found in storage, upload it first", f.ID)
	}

	if err := f.ConfirmUploaded(); err != nil {
		return nil, err
	}
	if err := s.fileRepo.Update(ctx, f); err != nil {
		return nil, err
	}

	response := ToFileResponse(f)
	s.enrichWithURL(ctx, &response, f)
	return &response, nil
}

// GetByID returns file metadata with a presigned download URL
func (s *FileService) GetByID(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*FileResponse, error) {
	f, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	response := ToFileResponse(f)
	s.enrichWithURL(ctx, &response, f)
	return &response, nil
}

func (s *FileService) find(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*file.File, error) {
	f, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(f.InventoryID) {
		return nil, shared.NotFoundf("file with ID %s not found", id)
	}
	return f, nil
}

func (s *FileService) enrichWithURL(ctx context.Context, response *FileResponse, f *file.File) {
	if f.Status != file.StatusUploaded {
		return
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, f.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Warn("Failed to generate download URL", zap.String("file_id", f.ID.String()), zap.Error(err))
		return
	}
	response.DownloadURL = url
	response.DownloadURLExpiresAt = &expiresAt
}
