package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeInternal         = "INTERNAL_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeUnknownCourse    = "UNKNOWN_COURSE"
	CodeInfeasiblePlan   = "INFEASIBLE_PLAN"
)

// AppError represents an application error with context
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	StatusCode int               `json:"-"`
	Err        error             `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithError wraps an underlying error
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Internal creates an internal server error
func Internal(message string) *AppError {
	return New(CodeInternal, message, http.StatusInternalServerError)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// Validation creates a validation error
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// RateLimited creates a rate limited error
func RateLimited() *AppError {
	return New(CodeRateLimited, "rate limit exceeded", http.StatusTooManyRequests)
}

// InvalidInput rejects a request before it reaches the dispatcher.
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

// StoreUnavailable reports that the course catalog cannot be read at all.
func StoreUnavailable(message string) *AppError {
	return New(CodeStoreUnavailable, message, http.StatusServiceUnavailable)
}

// UnknownCourse reports a course identifier that is not in the catalog.
func UnknownCourse(courseID string) *AppError {
	return New(CodeUnknownCourse, fmt.Sprintf("course %s is not in the catalog", courseID), http.StatusNotFound).
		WithDetail("courseId", courseID)
}

// InfeasiblePlan reports a plan that cannot be completed in the remaining terms.
func InfeasiblePlan(courseID, reason string) *AppError {
	e := New(CodeInfeasiblePlan, "no feasible plan: "+reason, http.StatusUnprocessableEntity).
		WithDetail("reason", reason)
	if courseID != "" {
		e.WithDetail("courseId", courseID)
	}
	return e
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error if present
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries the given application error code.
func HasCode(err error, code string) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return HasCode(err, CodeValidation)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return HasCode(err, CodeInvalidInput)
}

// IsStoreUnavailable checks if the error is a store unavailable error
func IsStoreUnavailable(err error) bool {
	return HasCode(err, CodeStoreUnavailable)
}

// IsUnknownCourse checks if the error is an unknown course error
func IsUnknownCourse(err error) bool {
	return HasCode(err, CodeUnknownCourse)
}

// IsInfeasiblePlan checks if the error is an infeasible plan error
func IsInfeasiblePlan(err error) bool {
	return HasCode(err, CodeInfeasiblePlan)
}

// IsDomain reports whether err is one of the advising domain errors that
// callers receive as a structured explanation rather than a generic failure.
func IsDomain(err error) bool {
	return IsUnknownCourse(err) || IsInfeasiblePlan(err)
}
