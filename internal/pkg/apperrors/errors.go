package apperrors

import "errors"

// Error categories. Every error a service returns wraps exactly one of these,
// and the HTTP boundary maps the category onto a status code.
var (
	// 400
	ErrValidationFailed       = errors.New("validation failed")
	ErrBadRequest             = errors.New("bad request")
	ErrReferentialIntegrity   = errors.New("referenced by other records")
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// 401
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenInvalid       = errors.New("invalid or expired token")

	// 403
	ErrPermissionDenied = errors.New("permission denied")
	ErrAccountDisabled  = errors.New("account is disabled")

	// 404
	ErrResourceNotFound = errors.New("resource not found")

	// 409
	ErrConflict = errors.New("conflict")
)

// Resource specific errors, each wrapping a category above
var (
	ErrUserNotFound          = &CustomError{Err: ErrResourceNotFound, Message: "user not found"}
	ErrMinistryNotFound      = &CustomError{Err: ErrResourceNotFound, Message: "ministry not found"}
	ErrScheduleNotFound      = &CustomError{Err: ErrResourceNotFound, Message: "schedule not found"}
	ErrParticipationNotFound = &CustomError{Err: ErrResourceNotFound, Message: "participation not found"}

	ErrEmailAlreadyExists = &CustomError{Err: ErrConflict, Message: "email already in use"}
	ErrCPFAlreadyExists   = &CustomError{Err: ErrConflict, Message: "cpf already in use"}
	ErrRGAlreadyExists    = &CustomError{Err: ErrConflict, Message: "rg already in use"}
	ErrMinistryNameExists = &CustomError{Err: ErrConflict, Message: "a ministry with this name already exists"}

	ErrAlreadyConfirmed       = &CustomError{Err: ErrInvalidStateTransition, Message: "participation already confirmed"}
	ErrChangeAlreadyRequested = &CustomError{Err: ErrInvalidStateTransition, Message: "change already requested for this participation"}
)

// NewValidationError creates a validation error with a client-facing message
func NewValidationError(message string) error {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{Err: ErrBadRequest, Message: message}
}

// NewReferentialIntegrityError reports a delete blocked by dependent rows
func NewReferentialIntegrityError(message string) error {
	return &CustomError{Err: ErrReferentialIntegrity, Message: message}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error carrying context details
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	return &CustomError{Err: e.Err, Message: e.Message, Details: details}
}

// PublicMessage returns the message of the outermost CustomError in the chain,
// or fallback when the chain holds none.
func PublicMessage(err error, fallback string) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}
