package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sritlabs/sat-backend/internal/middleware"
	"github.com/sritlabs/sat-backend/internal/response"
	"github.com/sritlabs/sat-backend/internal/service"
)

// DashboardHandler handles admin dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/v1/admin/dashboard
// Returns branch stat cards, certificate status distribution, event type and
// monthly upload breakdowns, and the approved-certificate leaderboard.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	claims := middleware.GetClaims(c)

	data, err := h.dashboardService.GetDashboardData(c.Request.Context(), claims.Branch)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, data)
}
