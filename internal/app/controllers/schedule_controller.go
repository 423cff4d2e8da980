package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/app/services"
	"github.com/yigit/parishscheduler/internal/middleware"
)

// ScheduleController handles schedule management and participation endpoints
type ScheduleController struct {
	scheduleService *services.ScheduleService
}

// NewScheduleController creates a new ScheduleController
func NewScheduleController(scheduleService *services.ScheduleService) *ScheduleController {
	return &ScheduleController{
		scheduleService: scheduleService,
	}
}

// ListManagedSchedules lists the schedules the caller manages
// @Summary List schedules for management
// @Description Directors see every schedule, coordinators only those of their ministries. Newest date first.
// @Tags schedules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ScheduleResponse} "Schedules retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schedules/management [get]
func (c *ScheduleController) ListManagedSchedules(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	schedules, err := c.scheduleService.ListManagement(ctx.Request.Context(), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(schedules))
}

// GetSchedule retrieves a schedule by ID
// @Summary Get schedule by ID
// @Tags schedules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 200 {object} dto.APIResponse{data=dto.ScheduleResponse} "Schedule retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Schedule outside the caller's ministries"
// @Failure 404 {object} dto.ErrorResponse "Schedule not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schedules/management/{id} [get]
func (c *ScheduleController) GetSchedule(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	schedule, err := c.scheduleService.Get(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(schedule))
}

// CreateSchedule handles schedule creation
// @Summary Create a schedule
// @Description Creates the schedule and one pending participation per volunteer atomically
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ScheduleRequest true "Schedule information"
// @Success 201 {object} dto.APIResponse{data=dto.ScheduleResponse} "Schedule created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or unknown volunteers"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Ministry outside the caller's ministries"
// @Failure 404 {object} dto.ErrorResponse "Ministry not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schedules/management [post]
func (c *ScheduleController) CreateSchedule(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.ScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	schedule, err := c.scheduleService.Create(ctx.Request.Context(), identity, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(schedule))
}

// CreateRecurringSchedules creates one schedule per recurrence occurrence
// @Summary Create recurring schedules
// @Description Expands an RRULE (e.g. FREQ=WEEKLY;COUNT=4) from the given date and creates every occurrence in one transaction. At most 52 occurrences.
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RecurringScheduleRequest true "Schedule template and recurrence"
// @Success 201 {object} dto.APIResponse{data=[]dto.ScheduleResponse} "Schedules created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or recurrence"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Ministry outside the caller's ministries"
// @Failure 404 {object} dto.ErrorResponse "Ministry not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schedules/management/recurring [post]
func (c *ScheduleController) CreateRecurringSchedules(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.RecurringScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	schedules, err := c.scheduleService.CreateRecurring(ctx.Request.Context(), identity, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(schedules))
}

// UpdateSchedule handles schedule updates
// @Summary Update a schedule
// @Description Updates the schedule and reconciles volunteers: new ones become pending, dropped ones are removed, the rest keep their status
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Param request body dto.ScheduleRequest true "Schedule information"
// @Success 200 {object} dto.APIResponse{data=dto.ScheduleResponse} "Schedule updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or unknown volunteers"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Ministry outside the caller's ministries"
// @Failure 404 {object} dto.ErrorResponse "Schedule or ministry not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schedules/management/{id} [put]
func (c *ScheduleController) UpdateSchedule(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.ScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	schedule, err := c.scheduleService.Update(ctx.Request.Context(), identity, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(schedule))
}

// DeleteSchedule deletes a schedule with its participations
// @Summary Delete a schedule
// @Tags schedules
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 204 "Schedule deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Ministry outside the caller's ministries"
// @Failure 404 {object} dto.ErrorResponse "Schedule not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schedules/management/{id} [delete]
func (c *ScheduleController) DeleteSchedule(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	if err := c.scheduleService.Delete(ctx.Request.Context(), identity, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ListMySchedules lists the caller's participations
// @Summary My schedules
// @Tags schedules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ParticipationResponse} "Participations retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schedules/my [get]
func (c *ScheduleController) ListMySchedules(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	participations, err := c.scheduleService.ListMine(ctx.Request.Context(), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(participations))
}

// ListAllSchedules lists every participation
// @Summary All schedules
// @Tags schedules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ParticipationResponse} "Participations retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schedules/all [get]
func (c *ScheduleController) ListAllSchedules(ctx *gin.Context) {
	participations, err := c.scheduleService.ListAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(participations))
}

// ConfirmParticipation confirms the caller's pending participation
// @Summary Confirm participation
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Participation ID"
// @Success 200 {object} dto.APIResponse{data=dto.ParticipationStatusResponse} "Participation confirmed"
// @Failure 400 {object} dto.ErrorResponse "Participation already confirmed or change already requested"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Participation not found"
// @Failure 409 {object} dto.ErrorResponse "Participation changed concurrently"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schedules/participation/{id}/confirm [post]
func (c *ScheduleController) ConfirmParticipation(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	result, err := c.scheduleService.Confirm(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
}

// RequestParticipationChange asks for the caller to be replaced in a schedule
// @Summary Request participation change
// @Tags participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Participation ID"
// @Param request body dto.RequestChangeRequest false "Optional reason"
// @Success 200 {object} dto.APIResponse{data=dto.ParticipationStatusResponse} "Change requested"
// @Failure 400 {object} dto.ErrorResponse "Participation already confirmed or change already requested"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Participation not found"
// @Failure 409 {object} dto.ErrorResponse "Participation changed concurrently"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schedules/participation/{id}/request-change [post]
func (c *ScheduleController) RequestParticipationChange(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.RequestChangeRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleBindingError(ctx, err)
			return
		}
	}

	result, err := c.scheduleService.RequestChange(ctx.Request.Context(), identity, ctx.Param("id"), req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
}
