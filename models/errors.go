package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidURL   = "INVALID_URL"
	ErrCodeFetchFailed  = "FETCH_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

// BrandError is the internal error type carrying an error code.
// StatusCode is the upstream HTTP status for FETCH_FAILED responses, 0 otherwise.
type BrandError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error // wrapped original error
}

func (e *BrandError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *BrandError) Unwrap() error {
	return e.Err
}

// NewBrandError creates a new BrandError.
func NewBrandError(code, message string, err error) *BrandError {
	return &BrandError{Code: code, Message: message, Err: err}
}

// NewFetchStatusError creates a FETCH_FAILED error for a non-2xx upstream response.
func NewFetchStatusError(statusCode int, targetURL string) *BrandError {
	return &BrandError{
		Code:       ErrCodeFetchFailed,
		Message:    "unexpected status fetching " + targetURL,
		StatusCode: statusCode,
	}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *BrandError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message, StatusCode: e.StatusCode}
}
