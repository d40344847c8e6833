package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/visitlog/analytics-backend-go/internal/config"
	"github.com/visitlog/analytics-backend-go/internal/handler"
	"github.com/visitlog/analytics-backend-go/internal/middleware"
)

// Handlers groups the handlers wired into the router
type Handlers struct {
	Analytics *handler.AnalyticsHandler
	Visits    *handler.VisitHandler
	Refresh   *handler.RefreshHandler
}

// SetupRouter builds the gin engine with all dashboard routes
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// The dashboard widgets are served from another origin
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Visitor Analytics API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateWindow))
	{
		api.GET("/visits", h.Visits.GetVisits)
		api.POST("/refresh", h.Refresh.Refresh)

		stats := api.Group("/stats")
		{
			stats.GET("/summary", h.Analytics.GetSummary)
			stats.GET("/daily", h.Analytics.GetDailyCounts)
			stats.GET("/hourly", h.Analytics.GetHourlyCounts)
			stats.GET("/breakdown/:dimension", h.Analytics.GetBreakdown)
			stats.GET("/filters", h.Analytics.GetFilterOptions)
		}

		mapGroup := api.Group("/map")
		{
			mapGroup.GET("/points", h.Analytics.GetMapPoints)
		}
	}

	return r
}
