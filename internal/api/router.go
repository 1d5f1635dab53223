package api

import (
	"net/http"
	"time"

	"dxsim/internal"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the JSON API engine. Routes are registered under /api
// so the engine can be mounted as-is by the UI router.
func NewRouter(h *SimulationHandler, logger *internal.Logger) *gin.Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger.With("http")))

	api := router.Group("/api")
	{
		api.POST("/simulations", h.CreateSimulation)
		api.POST("/simulations/report", h.SimulationReport)
		api.POST("/simulations/export", h.ExportSimulation)
		api.POST("/sweeps", h.CreateSweep)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "code": "NOT_FOUND"})
	})

	return router
}

// requestLogger logs one debug line per request through the app logger
func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
