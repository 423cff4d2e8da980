package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/app/services"
	"github.com/yigit/parishscheduler/internal/middleware"
)

// ReportController serves participation reports
type ReportController struct {
	reportService *services.ReportService
}

// NewReportController creates a new ReportController
func NewReportController(reportService *services.ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
	}
}

// GetScheduleReport lists participations matching the filters
// @Summary Schedule report
// @Description Filters participations by status, ministry name and free text over volunteer, schedule type and ministry. "todos" or "all" disable a filter.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, confirmed, exchange_requested or todos"
// @Param ministry query string false "Ministry name or todos"
// @Param search query string false "Free text search"
// @Success 200 {object} dto.APIResponse{data=[]dto.ParticipationResponse} "Report generated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/schedules [get]
func (c *ReportController) GetScheduleReport(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.ReportFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	rows, err := c.reportService.Schedules(ctx.Request.Context(), identity, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(rows))
}

// ExportScheduleReport downloads the filtered report
// @Summary Export schedule report
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param format query string true "Export format, only csv is supported"
// @Param status query string false "pending, confirmed, exchange_requested or todos"
// @Param ministry query string false "Ministry name or todos"
// @Param search query string false "Free text search"
// @Success 200 {file} file "CSV report"
// @Failure 400 {object} dto.ErrorResponse "Unsupported format or invalid filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/schedules/export [get]
func (c *ReportController) ExportScheduleReport(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.ReportExportRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	var buf bytes.Buffer
	if err := c.reportService.Export(ctx.Request.Context(), identity, &req, &buf); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filename := fmt.Sprintf("schedules-%s.csv", time.Now().UTC().Format("20060102"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
