package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/formstamp/formstamp/internal"
	"github.com/formstamp/formstamp/internal/config"
	"github.com/formstamp/formstamp/internal/handlers"
	"github.com/formstamp/formstamp/internal/logger"
	"github.com/formstamp/formstamp/internal/middleware"
	"github.com/formstamp/formstamp/internal/render"
	"github.com/formstamp/formstamp/internal/repository"
	"github.com/formstamp/formstamp/internal/services"
	"github.com/formstamp/formstamp/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.NewLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	db, err := internal.InitDB(cfg)
	if err != nil {
		logg.Fatalw("failed to initialize database", "error", err)
	}
	defer internal.CloseDB(db)

	ctx := context.Background()
	blobs, err := storage.NewGCSStore(ctx, cfg.GCS.BucketName, cfg.GCS.CredentialsPath)
	if err != nil {
		logg.Fatalw("failed to initialize blob storage", "error", err)
	}
	defer blobs.Close()

	templateRepo := repository.NewTemplateRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	renderLogRepo := repository.NewRenderLogRepository(db)

	renderLogService := services.NewRenderLogService(renderLogRepo, logg)
	templateService := services.NewTemplateService(templateRepo, blobs, logg)
	invoiceService := services.NewInvoiceService(invoiceRepo, templateRepo, blobs, render.NewRenderer(), renderLogService, logg)

	retention := services.NewRetentionService(renderLogRepo, cfg.Retention.RenderLogMaxAge, logg)
	retention.Start()

	// Graceful shutdown handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logg.Infow("shutting down server")
		retention.Stop()
		internal.CloseDB(db)
		os.Exit(0)
	}()

	templateHandler := handlers.NewTemplateHandler(templateService, logg)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, logg)
	logsHandler := handlers.NewLogsHandler(renderLogService)

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Template upload and field layout configuration
		v1.POST("/templates", templateHandler.UploadTemplate)
		v1.GET("/templates/:templateId", templateHandler.GetTemplate)
		v1.PUT("/templates/:templateId/fields", templateHandler.ConfigureFields)

		// Invoice creation and PDF retrieval
		v1.POST("/invoices", invoiceHandler.CreateInvoice)
		v1.GET("/invoices/:invoiceId/pdf", invoiceHandler.GetInvoicePDF)

		// Render activity
		v1.GET("/logs", logsHandler.GetRenderLogs)
	}

	logg.Infow("starting server", "port", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logg.Fatalw("server exited", "error", err)
	}
}
