package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/visitlog/analytics-backend-go/internal/service"
	"github.com/visitlog/analytics-backend-go/pkg/response"
)

// VisitHandler handles HTTP requests for the visit table
type VisitHandler struct {
	analyticsService *service.AnalyticsService
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(analyticsService *service.AnalyticsService) *VisitHandler {
	return &VisitHandler{
		analyticsService: analyticsService,
	}
}

// GetVisits handles GET /api/v1/visits
func (h *VisitHandler) GetVisits(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	result, err := h.analyticsService.GetVisits(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, result)
}
