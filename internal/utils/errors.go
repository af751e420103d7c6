package utils

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrorCodeValidationError   ErrorCode = "VALIDATION_ERROR"
	ErrorCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrorCodeNoSuitableFormat  ErrorCode = "NO_SUITABLE_FORMAT"
	ErrorCodeExtractionTimeout ErrorCode = "EXTRACTION_TIMEOUT"
	ErrorCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

// AppError is rendered to clients as {"error": Message, "details": Details};
// Code is kept for logs.
type AppError struct {
	Code       ErrorCode `json:"-"`
	Message    string    `json:"error"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func NewErrorWithDetails(code ErrorCode, message string, statusCode int, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Common error constructors
func NewValidationError(message string) *AppError {
	return NewError(ErrorCodeValidationError, message, http.StatusBadRequest)
}

func NewUnauthorizedError() *AppError {
	return NewError(
		ErrorCodeUnauthorized,
		"Unauthorized. Invalid API Key.",
		http.StatusUnauthorized,
	)
}

func NewExtractionError(err error) *AppError {
	return NewError(ErrorCodeExtractionFailed, err.Error(), http.StatusBadRequest)
}

func NewNoSuitableFormatError(err error) *AppError {
	return NewError(ErrorCodeNoSuitableFormat, err.Error(), http.StatusBadRequest)
}

func NewExtractionTimeoutError(err error) *AppError {
	return NewErrorWithDetails(
		ErrorCodeExtractionTimeout,
		"Media extraction timed out",
		http.StatusGatewayTimeout,
		err.Error(),
	)
}

func NewRateLimitError(limit string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeRateLimitExceeded,
		"Rate limit exceeded",
		http.StatusTooManyRequests,
		limit,
	)
}

func NewInternalError(err error) *AppError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewErrorWithDetails(
		ErrorCodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
		details,
	)
}
