package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/middleware"
	"github.com/yigit/parishscheduler/internal/pkg/auth"
)

// requireIdentity returns the caller identity or answers 401 when the route was not authenticated
func requireIdentity(ctx *gin.Context) (auth.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return auth.Identity{}, false
	}
	return identity, true
}
