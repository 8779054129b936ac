package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	expenseapp "github.com/stockflow/backend/internal/application/expense"
	fileapp "github.com/stockflow/backend/internal/application/file"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stockflow/backend/internal/application/notification"
	reportapp "github.com/stockflow/backend/internal/application/report"
	shipmentapp "github.com/stockflow/backend/internal/application/shipment"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/infrastructure/auth"
	"github.com/stockflow/backend/internal/infrastructure/config"
	"github.com/stockflow/backend/internal/infrastructure/event"
	"github.com/stockflow/backend/internal/infrastructure/lock"
	"github.com/stockflow/backend/internal/infrastructure/logger"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stockflow/backend/internal/infrastructure/storage"
	"github.com/stockflow/backend/internal/infrastructure/telemetry"
	"github.com/stockflow/backend/internal/interfaces/http/handler"
	"github.com/stockflow/backend/internal/interfaces/http/middleware"
	"github.com/stockflow/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			StockFlow API
//	@version		1.0
//	@description	Stock count reconciliation and shipment workflows for field inventories

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const deliveryDedupeTTL = 24 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting StockFlow backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry providers are installed globally before anything creates spans
	providers, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		Profiling: telemetry.ProfilingConfig{
			Enabled:       cfg.Telemetry.ProfilingEnabled,
			ServerAddress: cfg.Telemetry.ProfilingServerAddress,
			BasicAuthUser: cfg.Telemetry.ProfilingAuthUser,
			BasicAuthPass: cfg.Telemetry.ProfilingAuthPassword,
		},
	}, log)
	if err != nil {
		log.Fatal("Failed to set up telemetry", zap.Error(err))
	}
	log = providers.BridgeLogs(log, cfg.Telemetry.ServiceName, log.Level())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}

	// Redis backs the cross-process inventory lock and event dedupe; without
	// it both fall back to in-process implementations.
	lockOpts := lock.Options{
		TTL:     cfg.Workflow.LockTTL,
		Retries: cfg.Workflow.LockRetries,
		Backoff: cfg.Workflow.LockBackoff,
	}
	var (
		locker     workflow.InventoryLocker
		deliveries event.DeliveryStore
	)
	if cfg.Redis.Enabled() {
		client, err := lock.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = client.Close() }()

		locker = lock.NewRedisLocker(client, lockOpts, log)
		deliveries = event.NewRedisDeliveryStore(client, "stockflow:delivered:")
		checks["redis"] = redisCheck(client)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		locker = lock.NewMemoryLocker(lockOpts)
		deliveries = event.NewMemoryDeliveryStore()
		log.Warn("Redis not configured, inventory locks are process local")
	}

	// Object storage for deposit receipts
	var objects fileapp.ObjectStorage
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3Store(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create object storage client", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = s3Store.EnsureBucket(ctx)
		cancel()
		if err != nil {
			log.Fatal("Failed to prepare storage bucket", zap.Error(err), zap.String("bucket", s3Store.Bucket()))
		}
		objects = s3Store
	} else {
		objects = storage.NewMemoryStore(true)
		log.Warn("Object storage disabled, upload URLs are placeholders")
	}

	// Event bus and workflow notifications
	eventBus := event.NewInMemoryEventBus(log, event.WithDeliveryStore(deliveries, deliveryDedupeTTL))
	workflowHandler := notification.NewWorkflowEventHandler(log).
		WithNotifier(notification.NewLoggingNotifier(log))
	eventBus.Subscribe(workflowHandler)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	log.Info("Event handlers registered", zap.Strings("workflow_events", workflowHandler.EventTypes()))

	metrics, err := telemetry.NewWorkflowMetrics(providers.Meter("stockflow/workflow"))
	if err != nil {
		log.Fatal("Failed to create workflow metrics", zap.Error(err))
	}

	// Repositories
	txScope := persistence.NewGormTransactionScope(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	productUnitRepo := persistence.NewGormProductUnitRepository(db.DB)

	// Application services
	reportService := reportapp.NewReportService(persistence.NewGormReportRepository(db.DB), txScope, locker, eventBus, metrics, log)
	shipmentService := shipmentapp.NewShipmentService(persistence.NewGormShipmentRepository(db.DB), txScope, locker, eventBus, metrics, log)
	expenseService := expenseapp.NewExpenseService(persistence.NewGormExpenseRepository(db.DB), inventoryRepo, eventBus, log)
	fileService := fileapp.NewFileService(persistence.NewGormFileRepository(db.DB), objects, log)
	fileService.SetConfig(fileapp.ServiceConfig{
		UploadURLExpiry:   cfg.Workflow.UploadURLTTL,
		DownloadURLExpiry: cfg.Workflow.DownloadURLTTL,
	})
	ledgerService := inventoryapp.NewLedgerService(inventoryRepo, productUnitRepo)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(router.Config{
		JWTService: auth.NewJWTService(cfg.JWT),
		Logger:     log,
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		},
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, router.Handlers{
		Report:    handler.NewReportHandler(reportService),
		Shipment:  handler.NewShipmentHandler(shipmentService),
		Expense:   handler.NewExpenseHandler(expenseService),
		File:      handler.NewFileHandler(fileService),
		Inventory: handler.NewInventoryHandler(ledgerService),
		Health:    handler.NewHealthHandler(checks),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

func redisCheck(client *redis.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
