package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/app/services"
	"github.com/yigit/parishscheduler/internal/middleware"
)

// DashboardController serves the home page counters
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetSummary returns the counters for the caller's role
// @Summary Dashboard summary
// @Description Managers get activeVolunteers, pendingSchedules and confirmationsToday. Volunteers get upcomingSchedules and pendingConfirmation.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardSummary} "Summary retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /dashboard/summary [get]
func (c *DashboardController) GetSummary(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	summary, err := c.dashboardService.Summary(ctx.Request.Context(), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(summary))
}
