package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ressKim-io/EcoScan/api-service/internal/adapter/http/router"
	"github.com/ressKim-io/EcoScan/api-service/internal/adapter/repository/memory"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/repository"
	"github.com/ressKim-io/EcoScan/api-service/internal/infrastructure/cache"
	"github.com/ressKim-io/EcoScan/api-service/internal/infrastructure/config"
	"github.com/ressKim-io/EcoScan/api-service/internal/infrastructure/database"
	"github.com/ressKim-io/EcoScan/api-service/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()

	// Initialize storage
	var db *gorm.DB
	var scanRepo repository.ScanRepository
	if cfg.Database.Driver == "memory" {
		mem := memory.NewScanRepository()
		if cfg.Scan.SeedDemoData {
			if err := mem.Seed(ctx); err != nil {
				return fmt.Errorf("failed to seed demo data: %w", err)
			}
			log.Info("Seeded demo scan history")
		}
		scanRepo = mem
		log.Info("Using in-memory scan history")
	} else {
		db, err = database.Open(&cfg.Database, log)
		if err != nil {
			log.Error("Failed to connect to database", zap.Error(err))
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

		if err := database.AutoMigrate(db); err != nil {
			log.Error("Failed to run migrations", zap.Error(err))
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations completed")
	}

	// Initialize Redis (optional, continue without it)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("Connected to Redis")
		}
	}

	// Initialize upstreams. A missing provider only disables its scan mode.
	generator, err := router.NewGenerator(ctx, &cfg.Generator)
	if err != nil {
		log.Warn("Generator unavailable, analysis scans disabled", zap.String("provider", cfg.Generator.Provider), zap.Error(err))
	}
	classifier, err := router.NewClassifier(&cfg.Classifier)
	if err != nil {
		log.Warn("Classifier unavailable, sentiment scans disabled", zap.String("provider", cfg.Classifier.Provider), zap.Error(err))
	}

	// Setup router
	r, err := router.Setup(router.Dependencies{
		Config:     cfg,
		DB:         db,
		Redis:      redisClient,
		Logger:     log,
		ScanRepo:   scanRepo,
		Generator:  generator,
		Classifier: classifier,
	})
	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Generator.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server",
			zap.String("address", addr),
			zap.String("generator", cfg.Generator.Provider),
			zap.String("classifier", cfg.Classifier.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close database connection
	if db != nil {
		if sqlDB, err := db.DB(); err == nil && sqlDB != nil {
			_ = sqlDB.Close()
		}
	}

	// Close Redis connection
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("Server exited")
	return nil
}
