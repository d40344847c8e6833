package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/visitlog/analytics-backend-go/internal/service"
	"github.com/visitlog/analytics-backend-go/pkg/response"
)

// RefreshHandler handles manual cache refresh requests
type RefreshHandler struct {
	refreshService *service.RefreshService
}

// NewRefreshHandler creates a new refresh handler
func NewRefreshHandler(refreshService *service.RefreshService) *RefreshHandler {
	return &RefreshHandler{
		refreshService: refreshService,
	}
}

// Refresh handles POST /api/v1/refresh, the dashboard's refresh button
func (h *RefreshHandler) Refresh(c *gin.Context) {
	count, err := h.refreshService.Refresh(c.Request.Context())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"rows": count})
}
