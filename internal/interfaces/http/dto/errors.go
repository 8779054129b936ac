package dto

import (
	"net/http"

	"github.com/stockflow/backend/internal/domain/shared"
)

// Transport level error codes. Domain codes come from the shared package.
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeTooLarge   = "REQUEST_TOO_LARGE"
	ErrCodeExpired    = "TOKEN_EXPIRED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeTooLarge:   http.StatusRequestEntityTooLarge,
	ErrCodeExpired:    http.StatusUnauthorized,

	shared.CodeNotFound:          http.StatusNotFound,
	shared.CodeAlreadyExists:     http.StatusConflict,
	shared.CodeConflict:          http.StatusConflict,
	shared.CodeLockNotObtained:   http.StatusConflict,
	shared.CodeInvalidState:      http.StatusUnprocessableEntity,
	shared.CodeInvalidTransition: http.StatusUnprocessableEntity,
	shared.CodeInvalidInput:      http.StatusBadRequest,
	shared.CodeUnauthorized:      http.StatusUnauthorized,
	shared.CodeForbidden:         http.StatusForbidden,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
