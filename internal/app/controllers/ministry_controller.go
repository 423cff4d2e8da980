package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/app/services"
	"github.com/yigit/parishscheduler/internal/middleware"
)

// MinistryController handles ministry endpoints
type MinistryController struct {
	ministryService *services.MinistryService
}

// NewMinistryController creates a new MinistryController
func NewMinistryController(ministryService *services.MinistryService) *MinistryController {
	return &MinistryController{
		ministryService: ministryService,
	}
}

// ListMinistries retrieves all ministries
// @Summary List ministries
// @Description Lists every ministry with its member count, oldest first
// @Tags ministries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Ministry} "Ministries retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /ministries [get]
func (c *MinistryController) ListMinistries(ctx *gin.Context) {
	ministries, err := c.ministryService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(ministries))
}

// GetMinistry retrieves a ministry by ID
// @Summary Get ministry by ID
// @Tags ministries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ministry ID"
// @Success 200 {object} dto.APIResponse{data=models.Ministry} "Ministry retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Ministry not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /ministries/{id} [get]
func (c *MinistryController) GetMinistry(ctx *gin.Context) {
	ministry, err := c.ministryService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(ministry))
}

// CreateMinistry handles ministry creation
// @Summary Create a new ministry
// @Tags ministries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MinistryRequest true "Ministry information"
// @Success 201 {object} dto.APIResponse{data=models.Ministry} "Ministry created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Ministry name already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /ministries [post]
func (c *MinistryController) CreateMinistry(ctx *gin.Context) {
	var req dto.MinistryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	ministry, err := c.ministryService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(ministry))
}

// UpdateMinistry handles ministry updates
// @Summary Update a ministry
// @Tags ministries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ministry ID"
// @Param request body dto.MinistryRequest true "Ministry information"
// @Success 200 {object} dto.APIResponse{data=models.Ministry} "Ministry updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Ministry not found"
// @Failure 409 {object} dto.ErrorResponse "Ministry name already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /ministries/{id} [put]
func (c *MinistryController) UpdateMinistry(ctx *gin.Context) {
	var req dto.MinistryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	ministry, err := c.ministryService.Update(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(ministry))
}

// ToggleMinistryStatus inverts the active flag of a ministry
// @Summary Toggle ministry status
// @Tags ministries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ministry ID"
// @Success 200 {object} dto.APIResponse{data=models.Ministry} "Status changed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Ministry not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /ministries/{id}/toggle-status [put]
func (c *MinistryController) ToggleMinistryStatus(ctx *gin.Context) {
	ministry, err := c.ministryService.ToggleStatus(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(ministry))
}

// DeleteMinistry deletes a ministry without members
// @Summary Delete a ministry
// @Tags ministries
// @Security BearerAuth
// @Param id path string true "Ministry ID"
// @Success 204 "Ministry deleted"
// @Failure 400 {object} dto.ErrorResponse "Ministry still has members or schedules"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Ministry not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /ministries/{id} [delete]
func (c *MinistryController) DeleteMinistry(ctx *gin.Context) {
	if err := c.ministryService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
