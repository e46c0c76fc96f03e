// Package errors defines the error taxonomy shared by the pipeline and its
// HTTP surface: typed API errors, database error mapping, and the
// transient/permanent classification used by retry logic.
package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// APIError represents a structured error with HTTP status, code and message
type APIError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Predefined API errors
var (
	ErrBadRequest        = &APIError{HTTPStatus: http.StatusBadRequest, Code: "BAD_REQUEST", Message: "Invalid request parameters"}
	ErrInvalidJSON       = &APIError{HTTPStatus: http.StatusBadRequest, Code: "INVALID_JSON", Message: "Invalid JSON format"}
	ErrValidation        = &APIError{HTTPStatus: http.StatusBadRequest, Code: "VALIDATION_FAILED", Message: "Validation failed"}
	ErrDuplicateResource = &APIError{HTTPStatus: http.StatusConflict, Code: "DUPLICATE_RESOURCE", Message: "Resource already exists"}
	ErrResourceNotFound  = &APIError{HTTPStatus: http.StatusNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrInternalServer    = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "INTERNAL_SERVER_ERROR", Message: "Internal server error"}
	ErrDatabase          = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "DATABASE_ERROR", Message: "Database operation failed"}
	ErrBadGateway        = &APIError{HTTPStatus: http.StatusBadGateway, Code: "BAD_GATEWAY", Message: "Upstream service error"}

	ErrJobNotFound        = &APIError{HTTPStatus: http.StatusNotFound, Code: "JOB_NOT_FOUND", Message: "Job not found"}
	ErrJobNotCancellable  = &APIError{HTTPStatus: http.StatusConflict, Code: "JOB_NOT_CANCELLABLE", Message: "Job cannot be cancelled in its current status"}
	ErrJobNotRetryable    = &APIError{HTTPStatus: http.StatusConflict, Code: "JOB_NOT_RETRYABLE", Message: "Only failed jobs can be retried"}
	ErrNoProviders        = &APIError{HTTPStatus: http.StatusServiceUnavailable, Code: "NO_PROVIDERS_CONFIGURED", Message: "No translation providers configured"}
	ErrAllProvidersFailed = &APIError{HTTPStatus: http.StatusBadGateway, Code: "ALL_PROVIDERS_FAILED", Message: "All translation providers failed"}
	ErrMaxRetriesExceeded = &APIError{HTTPStatus: http.StatusBadGateway, Code: "MAX_RETRIES_EXCEEDED", Message: "Maximum retry attempts exceeded"}
)

// NewAPIError creates a copy of a predefined error with a custom message
func NewAPIError(base *APIError, message string) *APIError {
	return &APIError{
		HTTPStatus: base.HTTPStatus,
		Code:       base.Code,
		Message:    message,
	}
}

// NewAPIErrorWithUpstream creates an error carrying an upstream status and code
func NewAPIErrorWithUpstream(httpStatus int, code, message string) *APIError {
	return &APIError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
	}
}

// NewValidationError creates a validation error with a custom message
func NewValidationError(message string) *APIError {
	return NewAPIError(ErrValidation, message)
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(message string) *APIError {
	return NewAPIError(ErrResourceNotFound, message)
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *APIError {
	return NewAPIError(ErrDuplicateResource, message)
}

// ParseDBError maps driver-specific database errors to API errors.
// Returns nil for a nil input so callers can pass errors through unchecked.
func ParseDBError(err error) *APIError {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrResourceNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrDuplicateResource
		}
		return ErrDatabase
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if mysqlErr.Number == 1062 {
			return ErrDuplicateResource
		}
		return ErrDatabase
	}

	// glebarez/sqlite reports constraint violations as plain strings
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateResource
	}

	return ErrDatabase
}
