package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

var codeStatus = map[string]int{
	CodeNotFound:     http.StatusNotFound,
	CodeValidation:   http.StatusBadRequest,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeForbidden:    http.StatusForbidden,
	CodeConflict:     http.StatusConflict,
	CodeRateLimited:  http.StatusTooManyRequests,
	CodeInternal:     http.StatusInternalServerError,
}

// StatusForCode returns the HTTP status a code is served with; unknown codes are 500.
func StatusForCode(code string) int {
	if s, ok := codeStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError is a failure the API can describe to the caller.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// Status is the HTTP status for e.Code.
func (e *AppError) Status() int { return StatusForCode(e.Code) }

func newAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewNotFoundError names the missing resource and the key it was looked up by
// (an id, slug or username).
func NewNotFoundError(resource string, key any) *AppError {
	return newAppError(CodeNotFound, fmt.Sprintf("%s %v not found", resource, key))
}

func NewValidationError(message string) *AppError { return newAppError(CodeValidation, message) }

func NewUnauthorizedError(message string) *AppError { return newAppError(CodeUnauthorized, message) }

func NewForbiddenError(message string) *AppError { return newAppError(CodeForbidden, message) }

func NewConflictError(message string) *AppError { return newAppError(CodeConflict, message) }

func NewRateLimitedError(message string) *AppError { return newAppError(CodeRateLimited, message) }

// NewInternalError hides err from the client; it is only logged.
func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Err: err}
}

// IsCode reports whether err wraps an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError writes err as an ErrorResponse with the given status.
// Wrapped causes of internal errors are never echoed.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
	}
	body := ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	if appErr.Err != nil && appErr.Code != CodeInternal {
		body.Details = appErr.Err.Error()
	}
	return c.Status(status).JSON(body)
}
