package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/visitlog/analytics-backend-go/internal/models"
	"github.com/visitlog/analytics-backend-go/internal/service"
	"github.com/visitlog/analytics-backend-go/pkg/response"
)

// AnalyticsHandler handles HTTP requests for the derived dashboard views
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetSummary handles GET /api/v1/stats/summary
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	summary, err := h.analyticsService.GetSummary(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, summary)
}

// GetDailyCounts handles GET /api/v1/stats/daily
func (h *AnalyticsHandler) GetDailyCounts(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	counts, err := h.analyticsService.GetDailyCounts(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, counts)
}

// GetHourlyCounts handles GET /api/v1/stats/hourly
func (h *AnalyticsHandler) GetHourlyCounts(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	counts, err := h.analyticsService.GetHourlyCounts(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, counts)
}

// GetBreakdown handles GET /api/v1/stats/breakdown/:dimension
func (h *AnalyticsHandler) GetBreakdown(c *gin.Context) {
	dim := models.Dimension(strings.ToLower(c.Param("dimension")))
	if !dim.Valid() {
		response.BadRequest(c, "Unknown dimension: "+c.Param("dimension"))
		return
	}

	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	breakdown, err := h.analyticsService.GetBreakdown(filter, dim)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, breakdown)
}

// GetFilterOptions handles GET /api/v1/stats/filters
func (h *AnalyticsHandler) GetFilterOptions(c *gin.Context) {
	options, err := h.analyticsService.GetFilterOptions()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, options)
}

// GetMapPoints handles GET /api/v1/map/points
func (h *AnalyticsHandler) GetMapPoints(c *gin.Context) {
	levelStr := c.DefaultQuery("level", "0")
	level, err := strconv.Atoi(levelStr)
	if err != nil {
		response.BadRequest(c, "Invalid level parameter")
		return
	}

	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	points, err := h.analyticsService.GetGeoPoints(filter, level)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"points": points,
		"count":  len(points),
	})
}

func bindFilter(c *gin.Context) (models.VisitFilter, bool) {
	var filter models.VisitFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return filter, false
	}
	for _, date := range []string{filter.StartDate, filter.EndDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse(models.DateFormat, date); err != nil {
			response.BadRequest(c, "Invalid date "+date+", expected "+models.DateFormat)
			return filter, false
		}
	}
	return filter, true
}
