// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"supplyscope/internal/infrastructure/http/v1/handlers"
	"supplyscope/internal/infrastructure/http/v1/middleware"
	"supplyscope/internal/infrastructure/metrics"
	"supplyscope/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Procurement serves orders, scorecards and reports
	Procurement handlers.ProcurementService

	// DB is pinged by the readiness probe
	DB handlers.Pinger

	// Metrics is optional; without it /metrics is not mounted
	Metrics *metrics.Metrics

	Logger *logger.Logger

	// Debug switches gin to debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	router := gin.New()

	// order matters: Recovery must see panics from everything below it
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(log))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics, "/metrics", "/health/live", "/health/ready"))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	handlers.NewProcurementHandler(handlers.NewBaseHandler(), cfg.Procurement).RegisterRoutes(v1)

	return router
}
