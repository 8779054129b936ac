package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/file"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFileRepository implements FileRepository using GORM
type GormFileRepository struct {
	db *gorm.DB
}

// NewGormFileRepository creates a new GormFileRepository
func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

// FindByID finds a file record by its ID
func (r *GormFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*file.File, error) {
	var model models.FileModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "file with ID %s not found", id)
	}
	return model.ToDomain(), nil
}

// Create inserts a new file record
func (r *GormFileRepository) Create(ctx context.Context, f *file.File) error {
	if err := r.db.WithContext(ctx).Create(models.FileModelFromDomain(f)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "a file with this storage key already exists")
		}
		return err
	}
	return nil
}

// Update persists an existing file record. The used flag only ever goes
// from false to true, so a concurrent second association loses the version race.
func (r *GormFileRepository) Update(ctx context.Context, f *file.File) error {
	result := r.db.WithContext(ctx).
		Model(&models.FileModel{}).
		Where("id = ? AND version = ?", f.ID, f.Version-1).
		Updates(map[string]any{
			"status":     string(f.Status),
			"is_used":    f.Used,
			"used_by":    f.UsedBy,
			"version":    f.Version,
			"updated_at": f.UpdatedAt,
		})
	return checkVersioned(result)
}

// Delete removes a file record
func (r *GormFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FileModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFoundf("file with ID %s not found", id)
	}
	return nil
}

// Ensure GormFileRepository implements FileRepository
var _ file.FileRepository = (*GormFileRepository)(nil)
