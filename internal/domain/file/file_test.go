package file

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	inventoryID := uuid.New()

	t.Run("builds a pending file with a scoped key", func(t *testing.T) {
		f, err := NewFile(inventoryID, uuid.New(), CategoryReportDeposit, "Receipt.JPG", " Image/JPEG ", 1024)
		require.NoError(t, err)

		assert.Equal(t, StatusPending, f.Status)
		assert.Equal(t, "image/jpeg", f.ContentType)
		assert.Equal(t, "report_deposit/"+inventoryID.String()+"/"+f.ID.String()+".jpg", f.StorageKey)
		assert.False(t, f.IsAvailableFor(CategoryReportDeposit))
	})

	tests := []struct {
		name        string
		category    Category
		fileName    string
		contentType string
		size        int64
	}{
		{"unknown category", Category("AVATAR"), "a.png", "image/png", 1},
		{"empty name", CategoryGlobal, " ", "image/png", 1},
		{"long name", CategoryGlobal, strings.Repeat("a", 256), "image/png", 1},
		{"empty file", CategoryGlobal, "a.png", "image/png", 0},
		{"too large", CategoryGlobal, "a.png", "image/png", MaxFileSize + 1},
		{"executable", CategoryGlobal, "a.exe", "application/x-msdownload", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFile(inventoryID, uuid.New(), tt.category, tt.fileName, tt.contentType, tt.size)
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, shared.CodeInvalidInput, de.Code)
		})
	}
}

func TestFile_UploadAndUse(t *testing.T) {
	f, err := NewFile(uuid.New(), uuid.New(), CategoryReportDeposit, "r.pdf", "application/pdf", 10)
	require.NoError(t, err)

	require.ErrorIs(t, f.MarkUsed(uuid.New()), shared.ErrNotFound)

	require.NoError(t, f.ConfirmUploaded())
	require.ErrorIs(t, f.ConfirmUploaded(), shared.ErrConflict)
	assert.True(t, f.IsAvailableFor(CategoryReportDeposit))
	assert.False(t, f.IsAvailableFor(CategoryGlobal))

	reportID := uuid.New()
	require.NoError(t, f.MarkUsed(reportID))
	assert.Equal(t, &reportID, f.UsedBy)
	assert.False(t, f.IsAvailableFor(CategoryReportDeposit))
	require.ErrorIs(t, f.MarkUsed(uuid.New()), shared.ErrConflict)
}
