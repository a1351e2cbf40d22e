package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies generation backend failures.
type ErrorType string

const (
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeConnection  ErrorType = "connection"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeBadRequest  ErrorType = "bad_request"
	ErrorTypeEmpty       ErrorType = "empty_response"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a structured backend error with classification.
type Error struct {
	Type       ErrorType
	Message    string
	Retryable  bool
	Cause      error
	StatusCode int
	Backend    string
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Backend != "" {
		parts = append(parts, fmt.Sprintf("backend=%s", e.Backend))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new structured backend error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error from a backend call into a structured
// Error so the chain and retry logic can make consistent decisions.
func ClassifyError(err error, backend string) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		if llmErr.Backend == "" {
			llmErr.Backend = backend
		}
		return llmErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	classified := &Error{Cause: err, Backend: backend, StatusCode: statusCode}

	switch {
	case errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded"):
		classified.Type = ErrorTypeTimeout
		classified.Message = "request timed out"
		classified.Retryable = true
	case statusCode == 401 || statusCode == 403 ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key"):
		classified.Type = ErrorTypeAuth
		classified.Message = "authentication failed"
		classified.Retryable = false
	case statusCode == 429 || strings.Contains(lower, "rate limit"):
		classified.Type = ErrorTypeRateLimit
		classified.Message = "rate limited"
		classified.Retryable = true
	case statusCode >= 500:
		classified.Type = ErrorTypeServerError
		classified.Message = "provider error"
		classified.Retryable = true
	case statusCode == 400 || statusCode == 404:
		classified.Type = ErrorTypeBadRequest
		classified.Message = "bad request"
		classified.Retryable = false
	case strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "connection reset"):
		classified.Type = ErrorTypeConnection
		classified.Message = "connection failed"
		classified.Retryable = true
	default:
		classified.Type = ErrorTypeUnknown
		classified.Message = "request failed"
		classified.Retryable = true
	}

	return classified
}
