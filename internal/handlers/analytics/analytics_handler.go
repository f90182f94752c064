// internal/handlers/analytics/analytics_handler.go
package analytics

import (
	"net/http"
	"strconv"

	"gymbill-service/internal/pkg/response"
	service "gymbill-service/internal/service/analytics"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetRevenueAnalytics returns the current revenue snapshot plus trailing
// months (?months=N, default 6).
func (h *AnalyticsHandler) GetRevenueAnalytics(c *gin.Context) {
	months := 6
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.ValidationError(c, "invalid months parameter", err)
			return
		}
		months = parsed
	}

	result, err := h.analyticsService.GetRevenueAnalytics(c.Request.Context(), months)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to compute revenue analytics", err)
		return
	}

	response.Success(c, http.StatusOK, "revenue analytics computed", result)
}
