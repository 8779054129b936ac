//go:build integration

package persistence_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	fileapp "github.com/stockflow/backend/internal/application/file"
	reportapp "github.com/stockflow/backend/internal/application/report"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/domain/report"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/migration"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stockflow/backend/internal/infrastructure/persistence/testdb"
	"github.com/stockflow/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgres starts a disposable postgres and applies the embedded migrations
func newPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("stockflow_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	migrator, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, sqlDB.Close())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if raw, err := db.DB(); err == nil {
			_ = raw.Close()
		}
	})
	return db
}

func TestPostgres_ActiveReportIndex(t *testing.T) {
	db := newPostgres(t)
	ctx := context.Background()
	repo := persistence.NewGormReportRepository(db)
	invID := testdb.Inventory(t, db, "Shop", decimal.Zero)

	first, err := report.NewReport(invID, uuid.New(), "first", decimal.Zero, report.Figures{}, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := report.NewReport(invID, uuid.New(), "second", decimal.Zero, report.Figures{}, nil)
	require.NoError(t, err)
	err = repo.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict), "unique index violation should map to CONFLICT, got %v", err)

	require.NoError(t, db.Exec("UPDATE reports SET status = 'ACCEPTED' WHERE id = ?", first.ID).Error)
	assert.NoError(t, repo.Create(ctx, second), "accepted reports do not block a new one")
}

func TestPostgres_ConcurrentReportCreation(t *testing.T) {
	db := newPostgres(t)
	ctx := context.Background()
	invID := testdb.Inventory(t, db, "Shop", dec("100"))
	unitID := testdb.ProductUnit(t, db, invID, "Cement", dec("10"), dec("20"), dec("4"))

	// no process lock: the inventory row lock and the partial index decide
	svc := reportapp.NewReportService(
		persistence.NewGormReportRepository(db),
		persistence.NewGormTransactionScope(db),
		nil, nil, nil, zaptest.NewLogger(t),
	)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			actor := workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker, InventoryID: invID}
			_, err := svc.Create(ctx, actor, reportapp.SubmitReportRequest{
				CurrentMoneyAmount: dec("150"),
				Products:           []reportapp.ProductCountRequest{{ProductUnitID: unitID, Quantity: dec("15")}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, shared.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	var active int64
	require.NoError(t, db.Table("reports").Where("inventory_id = ? AND status <> 'ACCEPTED'", invID).Count(&active).Error)
	assert.Equal(t, int64(1), active)
}

func TestPostgres_ReportSettlement(t *testing.T) {
	db := newPostgres(t)
	ctx := context.Background()
	invID := testdb.Inventory(t, db, "Shop", dec("100"))
	unitID := testdb.ProductUnit(t, db, invID, "Cement", dec("10"), dec("20"), dec("4"))
	log := zaptest.NewLogger(t)

	svc := reportapp.NewReportService(
		persistence.NewGormReportRepository(db),
		persistence.NewGormTransactionScope(db),
		nil, nil, nil, log,
	)
	files := fileapp.NewFileService(persistence.NewGormFileRepository(db), storage.NewMemoryStore(true), log)
	worker := workflow.Actor{UserID: uuid.New(), Role: workflow.RoleWorker, InventoryID: invID}
	admin := workflow.Actor{UserID: uuid.New(), Role: workflow.RoleAdmin}

	created, err := svc.Create(ctx, worker, reportapp.SubmitReportRequest{
		CurrentMoneyAmount: dec("150"),
		Products:           []reportapp.ProductCountRequest{{ProductUnitID: unitID, Quantity: dec("15")}},
	})
	require.NoError(t, err)
	_, err = svc.AcceptLevelOne(ctx, admin, created.ID)
	require.NoError(t, err)

	upload, err := files.InitiateDepositReceipt(ctx, worker, fileapp.InitiateUploadRequest{
		FileName: "receipt.pdf", ContentType: "application/pdf", FileSize: 512,
	})
	require.NoError(t, err)
	_, err = files.ConfirmUpload(ctx, worker, upload.FileID)
	require.NoError(t, err)

	_, err = svc.SubmitDeposit(ctx, worker, created.ID, reportapp.SubmitDepositRequest{
		DepositMoneyAmount: dec("50"), DepositImageID: upload.FileID,
	})
	require.NoError(t, err)
	accepted, err := svc.FinalAccept(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(report.StatusAccepted), accepted.Status)

	current, total := testdb.Balance(t, db, invID)
	assert.True(t, dec("100").Equal(current), "current balance %s", current)
	assert.True(t, dec("100").Equal(total), "total balance %s", total)
	assert.True(t, dec("15").Equal(testdb.UnitQuantity(t, db, unitID)))
}
