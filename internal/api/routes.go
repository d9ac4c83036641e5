package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/", handler.Home)
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)
	router.GET("/metrics", gin.WrapH(handler.telemetry.Handler()))

	api := router.Group("/api")
	{
		api.GET("/taxonomy", handler.GetTaxonomy)     // GET /api/taxonomy
		api.GET("/hot_trends", handler.GetHotTrends)  // GET /api/hot_trends
		api.POST("/analyze", handler.Analyze)         // POST /api/analyze
		api.POST("/refresh", handler.Refresh)         // POST /api/refresh
	}
}
