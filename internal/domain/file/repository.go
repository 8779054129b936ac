package file

import (
	"context"

	"github.com/google/uuid"
)

// FileRepository defines persistence for file records
type FileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*File, error)
	Create(ctx context.Context, f *File) error
	// Update persists an existing file record with an optimistic version check
	Update(ctx context.Context, f *File) error
	Delete(ctx context.Context, id uuid.UUID) error
}
