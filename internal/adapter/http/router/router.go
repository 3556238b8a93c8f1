package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ressKim-io/EcoScan/api-service/internal/adapter/cache"
	"github.com/ressKim-io/EcoScan/api-service/internal/adapter/http/handler"
	"github.com/ressKim-io/EcoScan/api-service/internal/adapter/http/middleware"
	"github.com/ressKim-io/EcoScan/api-service/internal/adapter/repository/memory"
	"github.com/ressKim-io/EcoScan/api-service/internal/adapter/repository/postgres"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/repository"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
	"github.com/ressKim-io/EcoScan/api-service/internal/infrastructure/config"
	"github.com/ressKim-io/EcoScan/api-service/internal/usecase"
)

// Dependencies are the long-lived resources handlers are wired to. DB, Redis
// and either upstream may be nil.
type Dependencies struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	Logger     *zap.Logger
	ScanRepo   repository.ScanRepository
	Generator  service.Generator
	Classifier service.Classifier
	// Registry isolates metrics; the default Prometheus registry is used when nil
	Registry *prometheus.Registry
}

// Setup creates and configures the Gin router
func Setup(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handler.NewHealthHandler(deps.DB, deps.Redis, readinessChecks(deps.Generator, deps.Classifier)...)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	metricsHandler := promhttp.Handler()
	if deps.Registry != nil {
		registerer = deps.Registry
		metricsHandler = promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})
	}
	router.GET("/metrics", gin.WrapH(metricsHandler))

	// Initialize repositories
	scanRepo := deps.ScanRepo
	if scanRepo == nil {
		if deps.DB != nil {
			scanRepo = postgres.NewScanRepository(deps.DB)
		} else {
			scanRepo = memory.NewScanRepository()
		}
	}

	var scanCache repository.ScanCache
	if deps.Redis != nil {
		scanCache = cache.NewScanCache(deps.Redis, cfg.Scan.CacheTTL)
	}

	// Initialize usecases
	scanUC := usecase.NewScanUsecase(scanRepo, deps.Generator, deps.Classifier, usecase.Options{
		Cache:            scanCache,
		Metrics:          usecase.NewMetrics(registerer),
		Logger:           logger,
		DefaultMode:      entity.ScanMode(cfg.Scan.DefaultMode),
		HistoryLimit:     cfg.Scan.HistoryLimit,
		LeaderboardLimit: cfg.Scan.LeaderboardLimit,
	})

	// Initialize handlers
	scanHandler := handler.NewScanHandler(scanUC, cfg.Scan.MaxUploadBytes)
	pageHandler, err := handler.NewPageHandler(scanUC, cfg.Scan.MaxUploadBytes, cfg.Scan.DefaultMode)
	if err != nil {
		return nil, err
	}

	var scanGuard gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		scanGuard = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst).Middleware()
	}

	// HTML page
	router.GET("/", pageHandler.Index)
	router.POST("/scan", scanGuard, pageHandler.Scan)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Scan routes
		scans := v1.Group("/scans")
		{
			scans.POST("", scanGuard, scanHandler.CreateScan)
			scans.GET("", scanHandler.ListScans)
			scans.GET("/:id", scanHandler.GetScan)
		}
		v1.GET("/leaderboard", scanHandler.GetLeaderboard)
	}

	return router, nil
}
