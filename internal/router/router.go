package router

import (
	"github.com/gin-gonic/gin"

	"jcwest/internal/config"
	"jcwest/internal/handler"
	"jcwest/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	takeoffH *handler.TakeoffHandler,
	estimateH *handler.EstimateHandler,
	calibrationH *handler.CalibrationHandler,
	fileH *handler.FileHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Read routes
	v1.GET("/estimates", estimateH.List)
	v1.GET("/estimates/:id", estimateH.GetByID)
	v1.GET("/estimates/:id/csv", estimateH.ExportCSV)
	v1.GET("/estimates/:id/xlsx", estimateH.ExportWorkbook)
	v1.GET("/calibrations", calibrationH.Latest)
	v1.GET("/calibrations/:id", calibrationH.GetByID)
	v1.GET("/files", fileH.List)
	v1.GET("/files/:id", fileH.GetByID)

	// Mutating routes require a bearer token
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT))
	protected.POST("/takeoff", takeoffH.Run)
	protected.POST("/estimate", estimateH.Run)
	protected.POST("/calibrations", calibrationH.Run)
	protected.POST("/files/upload", fileH.Upload)
	protected.DELETE("/files/:id", fileH.Delete)

	return r
}
