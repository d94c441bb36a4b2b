package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/rentdesk/backend/internal/application/billing"
	leasingapp "github.com/rentdesk/backend/internal/application/leasing"
	"github.com/rentdesk/backend/internal/infrastructure/auth"
	"github.com/rentdesk/backend/internal/infrastructure/config"
	"github.com/rentdesk/backend/internal/infrastructure/event"
	"github.com/rentdesk/backend/internal/infrastructure/logger"
	"github.com/rentdesk/backend/internal/infrastructure/persistence"
	"github.com/rentdesk/backend/internal/infrastructure/scheduler"
	"github.com/rentdesk/backend/internal/infrastructure/storage"
	"github.com/rentdesk/backend/internal/interfaces/http/handler"
	"github.com/rentdesk/backend/internal/interfaces/http/middleware"
	"github.com/rentdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

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
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting RentDesk Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	contractRepo := persistence.NewGormContractRepository(db.DB)
	installmentRepo := persistence.NewGormInstallmentRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)

	// Initialize object storage for contract documents and payment receipts.
	// Without credentials the stub keeps upload endpoints functional in dev.
	var objectStorage leasingapp.ObjectStorageService
	if cfg.Storage.AccessKeyID != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage initialized",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("endpoint", cfg.Storage.Endpoint),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage credentials missing, using stub storage")
	}

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.SetHandlerTimeout(cfg.Event.HandlerTimeout)

	// Initialize application services
	installmentService := billingapp.NewInstallmentService(installmentRepo, contractRepo, eventBus, log)
	paymentService := billingapp.NewPaymentService(paymentRepo, installmentRepo, objectStorage, eventBus, log)
	notificationService := billingapp.NewNotificationService(installmentRepo, contractRepo, log)
	recomputeService := billingapp.NewStatusRecomputeService(installmentRepo, log)
	recomputeService.SetBatchSize(cfg.Scheduler.SweepBatchSize)
	contractService := leasingapp.NewContractService(contractRepo, objectStorage, eventBus, log)

	// Register event handlers
	contractCreatedHandler := billingapp.NewContractCreatedHandler(installmentService, log)
	eventBus.Subscribe(contractCreatedHandler)

	log.Info("Event handlers registered",
		zap.Strings("contract_created_events", contractCreatedHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize daily status sweep scheduler (if enabled)
	var sweepScheduler *scheduler.StatusSweepScheduler
	if cfg.Scheduler.Enabled {
		schedulerConfig := scheduler.StatusSweepSchedulerConfig{
			Enabled:      cfg.Scheduler.Enabled,
			SweepHourUTC: cfg.Scheduler.SweepHourUTC,
			SweepTimeout: 30 * time.Minute,
		}
		sweepScheduler = scheduler.NewStatusSweepScheduler(recomputeService, log, schedulerConfig)
		if err := sweepScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start status sweep scheduler", zap.Error(err))
		}
		defer func() {
			if err := sweepScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping status sweep scheduler", zap.Error(err))
			}
		}()
		log.Info("Status sweep scheduler started",
			zap.Int("sweep_hour_utc", cfg.Scheduler.SweepHourUTC),
			zap.Int("sweep_batch_size", cfg.Scheduler.SweepBatchSize),
		)
	}

	// Initialize HTTP handlers
	contractHandler := handler.NewContractHandler(contractService)
	installmentHandler := handler.NewInstallmentHandler(installmentService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	var sweepTrigger handler.SweepTrigger
	if sweepScheduler != nil {
		sweepTrigger = sweepScheduler
	}
	systemHandler := handler.NewSystemHandler(sweepTrigger)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(4 << 20))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Office context: JWT claims take priority, X-Office-ID header is the
	// dev fallback when authentication is skipped
	officeConfig := middleware.DefaultOfficeConfig()
	officeConfig.Logger = log
	r.Use(middleware.OfficeMiddlewareWithConfig(officeConfig))

	// Leasing domain (contracts, notification config, documents)
	leasingRoutes := router.NewDomainGroup("leasing", "/leasing")
	leasingRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "leasing service ready"})
	})
	leasingRoutes.POST("/contracts", contractHandler.Create)
	leasingRoutes.GET("/contracts", contractHandler.List)
	leasingRoutes.GET("/contracts/:id", contractHandler.GetByID)
	leasingRoutes.PUT("/contracts/:id/notifications", contractHandler.SetNotificationConfig)
	leasingRoutes.POST("/contracts/:id/document/upload", contractHandler.InitiateDocumentUpload)
	leasingRoutes.POST("/contracts/:id/document/confirm", contractHandler.ConfirmDocument)
	leasingRoutes.GET("/contracts/:id/document/url", contractHandler.GetDocumentURL)

	// Billing domain (installments, line items, payments, reminders)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "billing service ready"})
	})
	billingRoutes.POST("/contracts/:id/installments/generate", installmentHandler.Generate)
	billingRoutes.GET("/contracts/:id/installments", installmentHandler.ListByContract)
	billingRoutes.GET("/installments", installmentHandler.List)
	billingRoutes.GET("/installments/:id", installmentHandler.GetByID)
	billingRoutes.PUT("/installments/:id/items", installmentHandler.UpsertLineItem)
	billingRoutes.DELETE("/installments/:id/items/:itemId", installmentHandler.RemoveLineItem)
	billingRoutes.POST("/installments/:id/late-fee", installmentHandler.AddLateFee)
	billingRoutes.PUT("/installments/:id/agreement", installmentHandler.SetAgreement)
	billingRoutes.PUT("/installments/:id/notification-override", installmentHandler.SetNotificationOverride)
	billingRoutes.POST("/installments/:id/mark-paid", paymentHandler.MarkPaidWithoutReceipt)
	billingRoutes.GET("/installments/:id/payments", paymentHandler.ListByInstallment)
	billingRoutes.POST("/payments", paymentHandler.Record)
	billingRoutes.GET("/payments", paymentHandler.List)
	billingRoutes.POST("/payments/:id/receipt/upload", paymentHandler.InitiateReceiptUpload)
	billingRoutes.POST("/payments/:id/receipt/confirm", paymentHandler.ConfirmReceipt)
	billingRoutes.GET("/payments/:id/receipt/url", paymentHandler.GetReceiptURL)
	billingRoutes.GET("/notifications/reminders", notificationHandler.ListReminders)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.POST("/recompute", systemHandler.TriggerRecompute)

	// Register all domain groups
	r.Register(leasingRoutes).
		Register(billingRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
