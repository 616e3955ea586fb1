package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kokonnect/konnect-back-sub000/config"
	"github.com/kokonnect/konnect-back-sub000/handler"
	"github.com/kokonnect/konnect-back-sub000/middleware"
	"github.com/kokonnect/konnect-back-sub000/pkg/logger"
	"github.com/kokonnect/konnect-back-sub000/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Initialize services
	quota := service.NewQuotaTracker(cfg.Gemini.CapableDailyLimit, cfg.Gemini.EconomyDailyLimit)
	gen := service.NewGenerationClient(&cfg.Gemini, quota)

	// Vision OCR first, local tesseract as fallback
	ocrSelector := service.NewOCRSelector(
		service.NewGeminiOCR(gen),
		service.NewTesseractOCR(cfg.OCR.Languages),
	)
	extractor := service.NewTextExtractor(ocrSelector, &cfg.PDF)

	cache := service.NewAnalysisCache(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
	store := service.NewAnalysisStore(&cfg.Store)

	orchestrator := service.NewOrchestrator(
		gen,
		extractor,
		service.NewClassifier(gen),
		service.NewUnifiedExtractor(gen),
		service.NewExpressionExtractor(gen),
		service.NewSimplifier(gen),
		service.NewTranslator(gen),
		service.NewSummarizer(gen),
		cache,
		store,
	)

	// Object storage is optional: without an endpoint the original files
	// are simply not retained.
	var storage *service.FileStorage
	if cfg.Storage.Endpoint != "" {
		storage, err = service.NewFileStorage(&cfg.Storage)
		if err != nil {
			slog.Error("failed to initialize file storage", "error", err)
			os.Exit(1)
		}
		if err := storage.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure storage bucket", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("file storage disabled, no endpoint configured")
	}

	maxUploadBytes := int64(cfg.Upload.MaxSizeMB) * 1024 * 1024
	analysisHandler := handler.NewAnalysisHandler(orchestrator, storage, store, maxUploadBytes)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                // Request ID for tracing
	router.Use(middleware.Recovery())                 // Panic recovery
	router.Use(middleware.RequestLogger())            // Access logging
	router.Use(corsMiddleware())                      // CORS
	router.Use(middleware.RateLimit(60, time.Minute)) // Rate limiting: 60 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"timestamp":       time.Now().Format(time.RFC3339),
			"pending_retries": cache.Len(),
			"capable_used":    quota.Usage(service.TierCapable),
			"economy_used":    quota.Usage(service.TierEconomy),
			"stored_analyses": store.Count(),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/analyses", analysisHandler.Analyze)
		api.POST("/analyses/:id/retry", analysisHandler.Retry)
		api.GET("/analyses", analysisHandler.List)
		api.GET("/analyses/:id", analysisHandler.Get)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 300 * time.Second, // a full pipeline run spans several model calls
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
