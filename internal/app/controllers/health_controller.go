package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
)

// Pinger checks that a backing service answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports service liveness
type HealthController struct {
	checks map[string]Pinger
}

// NewHealthController creates a new HealthController over named dependency checks
func NewHealthController(checks map[string]Pinger) *HealthController {
	return &HealthController{checks: checks}
}

// HealthResponse describes the state of the service and its dependencies
type HealthResponse struct {
	Status       string            `json:"status" example:"ok"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health checks every dependency
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=HealthResponse} "Service healthy"
// @Failure 503 {object} dto.APIResponse{data=HealthResponse} "A dependency is down"
// @Router /health [get]
func (h *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{Status: "ok", Dependencies: map[string]string{}}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check.Ping(checkCtx); err != nil {
			response.Dependencies[name] = "down"
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Dependencies[name] = "up"
	}

	ctx.JSON(status, dto.APIResponse{
		Success:   status == http.StatusOK,
		Data:      response,
		Timestamp: time.Now(),
	})
}

// Ping answers pong
// @Summary Ping
// @Tags health
// @Produce json
// @Success 200 {object} dto.MessageResponse "pong"
// @Router /ping [get]
func (h *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "pong"})
}
