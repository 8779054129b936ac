package file

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/domain/file"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mocks
// ============================================================================

// MockFileRepository is a mock implementation of file.FileRepository
type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*file.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*file.File), args.Error(1)
}

func (m *MockFileRepository) Create(ctx context.Context, f *file.File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFileRepository) Update(ctx context.Context, f *file.File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

var _ ObjectStorage = (*MockObjectStorage)(nil)

// ============================================================================
// Test Helpers
// ============================================================================

var (
	testInventoryID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testWorkerID    = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func testWorker() workflow.Actor {
	return workflow.Actor{UserID: testWorkerID, Role: workflow.RoleWorker, InventoryID: testInventoryID}
}

func createTestFile(t *testing.T) *file.File {
	t.Helper()
	f, err := file.NewFile(testInventoryID, testWorkerID, file.CategoryReportDeposit, "receipt.jpg", "image/jpeg", 2048)
	require.NoError(t, err)
	return f
}

func newTestFileService() (*FileService, *MockFileRepository, *MockObjectStorage) {
	repo := new(MockFileRepository)
	storage := new(MockObjectStorage)
	return NewFileService(repo, storage, nil), repo, storage
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

// ============================================================================
// InitiateDepositReceipt Tests
// ============================================================================

func TestFileService_InitiateDepositReceipt_Success(t *testing.T) {
	service, repo, storage := newTestFileService()
	service.SetConfig(ServiceConfig{UploadURLExpiry: 5 * time.Minute, DownloadURLExpiry: time.Hour})

	ctx := context.Background()
	expiresAt := time.Now().Add(5 * time.Minute)

	repo.On("Create", ctx, mock.AnythingOfType("*file.File")).Return(nil)
	storage.On("GenerateUploadURL", ctx, mock.AnythingOfType("string"), "image/png", 5*time.Minute).
		Return("https://storage.example.com/upload?sig=abc", expiresAt, nil)

	result, err := service.InitiateDepositReceipt(ctx, testWorker(), InitiateUploadRequest{
		FileName: "Receipt.PNG", ContentType: "image/png", FileSize: 4096,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.FileID)
	assert.Equal(t, "https://storage.example.com/upload?sig=abc", result.UploadURL)
	assert.Equal(t, expiresAt, result.ExpiresAt)
	assert.Equal(t, "report_deposit/"+testInventoryID.String()+"/"+result.FileID.String()+".png", result.StorageKey)

	created := repo.Calls[0].Arguments.Get(1).(*file.File)
	assert.Equal(t, file.StatusPending, created.Status)
	assert.Equal(t, file.CategoryReportDeposit, created.Category)
	repo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestFileService_InitiateDepositReceipt_AdminHasNoInventory(t *testing.T) {
	service, repo, storage := newTestFileService()
	admin := workflow.Actor{UserID: uuid.New(), Role: workflow.RoleAdmin}

	_, err := service.InitiateDepositReceipt(context.Background(), admin, InitiateUploadRequest{
		FileName: "receipt.jpg", ContentType: "image/jpeg", FileSize: 10,
	})

	requireCode(t, err, shared.CodeForbidden)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	storage.AssertNotCalled(t, "GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFileService_InitiateDepositReceipt_RejectsInput(t *testing.T) {
	tests := []struct {
		name string
		req  InitiateUploadRequest
	}{
		{"disallowed content type", InitiateUploadRequest{FileName: "run.sh", ContentType: "text/x-shellscript", FileSize: 10}},
		{"too large", InitiateUploadRequest{FileName: "big.pdf", ContentType: "application/pdf", FileSize: file.MaxFileSize + 1}},
		{"blank name", InitiateUploadRequest{FileName: "   ", ContentType: "image/jpeg", FileSize: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := newTestFileService()
			_, err := service.InitiateDepositReceipt(context.Background(), testWorker(), tt.req)
			requireCode(t, err, shared.CodeInvalidInput)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestFileService_InitiateDepositReceipt_URLFailureRemovesRecord(t *testing.T) {
	service, repo, storage := newTestFileService()
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*file.File")).Return(nil)
	repo.On("Delete", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)
	storage.On("GenerateUploadURL", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return("", time.Time{}, errors.New("signing key expired"))

	result, err := service.InitiateDepositReceipt(ctx, testWorker(), InitiateUploadRequest{
		FileName: "receipt.jpg", ContentType: "image/jpeg", FileSize: 10,
	})

	assert.Nil(t, result)
	requireCode(t, err, "UPLOAD_URL_FAILED")
	created := repo.Calls[0].Arguments.Get(1).(*file.File)
	repo.AssertCalled(t, "Delete", ctx, created.ID)
}

// ============================================================================
// ConfirmUpload Tests
// ============================================================================

func TestFileService_ConfirmUpload_Success(t *testing.T) {
	service, repo, storage := newTestFileService()
	ctx := context.Background()
	f := createTestFile(t)
	expiresAt := time.Now().Add(time.Hour)

	repo.On("FindByID", ctx, f.ID).Return(f, nil)
	storage.On("ObjectExists", ctx, f.StorageKey).Return(true, nil)
	repo.On("Update", ctx, f).Return(nil)
	storage.On("GenerateDownloadURL", ctx, f.StorageKey, time.Hour).
		Return("https://storage.example.com/download?sig=xyz", expiresAt, nil)

	result, err := service.ConfirmUpload(ctx, testWorker(), f.ID)

	require.NoError(t, err)
	assert.Equal(t, "UPLOADED", result.Status)
	assert.False(t, result.IsUsed)
	assert.Equal(t, "https://storage.example.com/download?sig=xyz", result.DownloadURL)
	require.NotNil(t, result.DownloadURLExpiresAt)
	assert.Equal(t, expiresAt, *result.DownloadURLExpiresAt)
	repo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestFileService_ConfirmUpload_NotInStorage(t *testing.T) {
	service, repo, storage := newTestFileService()
	ctx := context.Background()
	f := createTestFile(t)

	repo.On("FindByID", ctx, f.ID).Return(f, nil)
	storage.On("ObjectExists", ctx, f.StorageKey).Return(false, nil)

	result, err := service.ConfirmUpload(ctx, testWorker(), f.ID)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, file.StatusPending, f.Status)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestFileService_ConfirmUpload_StorageError(t *testing.T) {
	service, repo, storage := newTestFileService()
	ctx := context.Background()
	f := createTestFile(t)

	repo.On("FindByID", ctx, f.ID).Return(f, nil)
	storage.On("ObjectExists", ctx, f.StorageKey).Return(false, errors.New("timeout"))

	_, err := service.ConfirmUpload(ctx, testWorker(), f.ID)

	requireCode(t, err, "STORAGE_CHECK_FAILED")
}

func TestFileService_ConfirmUpload_AlreadyConfirmed(t *testing.T) {
	service, repo, storage := newTestFileService()
	ctx := context.Background()
	f := createTestFile(t)
	require.NoError(t, f.ConfirmUploaded())

	repo.On("FindByID", ctx, f.ID).Return(f, nil)
	storage.On("ObjectExists", ctx, f.StorageKey).Return(true, nil)

	_, err := service.ConfirmUpload(ctx, testWorker(), f.ID)

	requireCode(t, err, shared.CodeConflict)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestFileService_ConfirmUpload_ForeignInventory(t *testing.T) {
	service, repo, storage := newTestFileService()
	ctx := context.Background()
	f := createTestFile(t)
	outsider := workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker, InventoryID: uuid.New()}

	repo.On("FindByID", ctx, f.ID).Return(f, nil)

	_, err := service.ConfirmUpload(ctx, outsider, f.ID)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	storage.AssertNotCalled(t, "ObjectExists", mock.Anything, mock.Anything)
}

// ============================================================================
// GetByID Tests
// ============================================================================

func TestFileService_GetByID_PendingHasNoURL(t *testing.T) {
	service, repo, storage := newTestFileService()
	ctx := context.Background()
	f := createTestFile(t)

	repo.On("FindByID", ctx, f.ID).Return(f, nil)

	result, err := service.GetByID(ctx, testWorker(), f.ID)

	require.NoError(t, err)
	assert.Equal(t, "PENDING", result.Status)
	assert.Empty(t, result.DownloadURL)
	assert.Nil(t, result.DownloadURLExpiresAt)
	storage.AssertNotCalled(t, "GenerateDownloadURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestFileService_GetByID_UsedFileVisibleToAdmin(t *testing.T) {
	service, repo, storage := newTestFileService()
	ctx := context.Background()
	f := createTestFile(t)
	require.NoError(t, f.ConfirmUploaded())
	reportID := uuid.New()
	require.NoError(t, f.MarkUsed(reportID))
	admin := workflow.Actor{UserID: uuid.New(), Role: workflow.RoleAdmin}

	repo.On("FindByID", ctx, f.ID).Return(f, nil)
	storage.On("GenerateDownloadURL", ctx, f.StorageKey, mock.AnythingOfType("time.Duration")).
		Return("", time.Time{}, errors.New("unavailable"))

	result, err := service.GetByID(ctx, admin, f.ID)

	require.NoError(t, err)
	assert.True(t, result.IsUsed)
	assert.Equal(t, &reportID, result.UsedBy)
	assert.Empty(t, result.DownloadURL)
}

func TestFileService_GetByID_NotFound(t *testing.T) {
	service, repo, _ := newTestFileService()
	ctx := context.Background()
	id := uuid.New()

	repo.On("FindByID", ctx, id).Return(nil, shared.NotFoundf("file with ID %s not found", id))

	result, err := service.GetByID(ctx, testWorker(), id)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	repo.AssertExpectations(t)
}
