package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
)

// HandleBindingError answers a failed ShouldBind call with a 400 listing each invalid field
func HandleBindingError(c *gin.Context, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request data")

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := dto.NewValidationErrors()
		for _, fe := range validationErrs {
			fields.AddError(fe.Field(), formatValidationError(fe))
		}
		errorDetail = errorDetail.WithDetails(fields.Errors)
	} else {
		errorDetail = errorDetail.WithDetails("Malformed request body")
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "isodate":
		return e.Field() + " must be a date formatted as YYYY-MM-DD"
	case "clock":
		return e.Field() + " must be a time formatted as HH:MM"
	case "hexcolor":
		return e.Field() + " must be a hex color such as #3b82f6"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
