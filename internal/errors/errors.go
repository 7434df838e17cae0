/*
Package errors - Custom Error Types for the Payroll Engine

==============================================================================
FILE: internal/errors/errors.go
==============================================================================

DESCRIPTION:
    Provides typed error definitions for consistent error handling across the
    application. Replaces string-based error checking with type assertions,
    making error handling more robust and maintainable.

    The taxonomy follows the calculation pipeline's own classification of
    failure: some conditions are hard stops (Validation, NotFound, Conflict,
    Fatal), others are recoverable anomalies the pipeline clamps and logs
    rather than aborts on (OptionalConfigMissing, DataAnomaly) - those are
    carried as values on the result, not returned as errors, but share the
    same AppError shape so logging and API responses treat them uniformly.

USAGE:
    // In a calculator:
    return nil, errors.ErrCycleNotFound

    // In a handler:
    if errors.Is(err, errors.ErrCycleNotFound) {
        c.JSON(http.StatusNotFound, ...)
    }

    // For wrapped errors:
    return errors.Wrap(err, errors.ErrDatabaseOperation)

DEVELOPER GUIDELINES:
    OK to modify: Add new error types as needed
    CAUTION: Changing error codes may affect API consumers
    DO NOT modify: Error interface implementation

==============================================================================
*/
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// AppError represents an application-level error with HTTP status code.
type AppError struct {
	Code       string // Machine-readable error code
	Message    string // Human-readable message
	HTTPStatus int    // HTTP status code for API responses
	Err        error  // Underlying error (optional)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is().
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewAppError creates a new application error.
func NewAppError(code string, message string, status int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap wraps an underlying error with an AppError.
func Wrap(err error, appErr *AppError) *AppError {
	return &AppError{
		Code:       appErr.Code,
		Message:    appErr.Message,
		HTTPStatus: appErr.HTTPStatus,
		Err:        err,
	}
}

// WithMessage creates a copy of the error with a custom message.
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    msg,
		HTTPStatus: e.HTTPStatus,
		Err:        e.Err,
	}
}

// ============================================================================
// Validation Errors
// ============================================================================

var (
	ErrValidationFailed = NewAppError(
		"VALIDATION_FAILED",
		"Validation failed",
		http.StatusBadRequest,
	)

	ErrInvalidCycleLabel = NewAppError(
		"VALIDATION_INVALID_CYCLE_LABEL",
		"Cycle label must be in YYYY-MM format",
		http.StatusBadRequest,
	)

	ErrInvalidPunchTimestamp = NewAppError(
		"VALIDATION_INVALID_PUNCH_TIMESTAMP",
		"Punch timestamp could not be parsed",
		http.StatusBadRequest,
	)

	ErrMissingField = NewAppError(
		"VALIDATION_MISSING_FIELD",
		"Required field is missing",
		http.StatusBadRequest,
	)
)

// ============================================================================
// Not-found Errors
// ============================================================================

var (
	ErrEmployeeNotFound = NewAppError(
		"EMPLOYEE_NOT_FOUND",
		"Employee not found",
		http.StatusNotFound,
	)

	ErrCycleNotFound = NewAppError(
		"CYCLE_NOT_FOUND",
		"No data for the requested payroll cycle",
		http.StatusNotFound,
	)

	ErrSalarySnapshotNotFound = NewAppError(
		"SALARY_SNAPSHOT_NOT_FOUND",
		"No salary snapshot exists for the requested month",
		http.StatusNotFound,
	)
)

// ============================================================================
// Conflict Errors
// ============================================================================

var (
	ErrSnapshotAlreadyFinalized = NewAppError(
		"SNAPSHOT_ALREADY_FINALIZED",
		"Salary snapshot is finalized and cannot be recalculated",
		http.StatusConflict,
	)

	ErrOverlappingAssignment = NewAppError(
		"SHIFT_OVERLAPPING_ASSIGNMENT",
		"Shift assignment overlaps an existing assignment",
		http.StatusConflict,
	)

	ErrDuplicateKey = NewAppError(
		"DATABASE_DUPLICATE_KEY",
		"Duplicate key violation",
		http.StatusConflict,
	)
)

// ============================================================================
// Recoverable calculation anomalies
//
// These are not returned as errors from the calculation pipeline. The day
// classifier clamps worked hours to [0, 24] without logging anything; a
// missing base salary is recorded in SalaryCalculation.Warnings, which the
// service logs via logger.WithCycle. They exist as AppError values so
// that code which DOES want to surface them (a validation endpoint, a
// report of skipped employees) can reuse the same Code/Message/HTTPStatus
// shape.
// ============================================================================

var (
	ErrOptionalConfigMissing = NewAppError(
		"OPTIONAL_CONFIG_MISSING",
		"Optional configuration value missing, falling back to default",
		http.StatusOK,
	)

	ErrDataAnomaly = NewAppError(
		"DATA_ANOMALY",
		"Input data anomaly detected, value was clamped",
		http.StatusOK,
	)
)

// ============================================================================
// Transient Errors
// ============================================================================

var (
	ErrDatabaseOperation = NewAppError(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrBatchEmployeeTimeout = NewAppError(
		"BATCH_EMPLOYEE_TIMEOUT",
		"Per-employee calculation exceeded its soft timeout",
		http.StatusGatewayTimeout,
	)

	ErrServiceUnavailable = NewAppError(
		"SERVICE_UNAVAILABLE",
		"Service temporarily unavailable",
		http.StatusServiceUnavailable,
	)
)

// ============================================================================
// Fatal Errors
// ============================================================================

var (
	ErrInternal = NewAppError(
		"INTERNAL_ERROR",
		"An internal error occurred",
		http.StatusInternalServerError,
	)

	ErrShiftResolutionFailed = NewAppError(
		"SHIFT_RESOLUTION_FAILED",
		"No shift could be resolved for the employee and date, and no system default exists",
		http.StatusInternalServerError,
	)
)

// ============================================================================
// Helper Functions
// ============================================================================

// GetHTTPStatus returns the HTTP status code for an error.
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// GetErrorMessage returns the user-friendly message for an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
