package models

import (
	"fmt"
)

// ErrorCode classifies failures surfaced to HTTP callers
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	CodeUpstreamFailure  ErrorCode = "UPSTREAM_FAILURE"
	CodeInternal         ErrorCode = "INTERNAL"
)

// AppError is an expected, classified failure. Message is safe to show to the caller;
// Err holds the underlying cause for server-side logs only.
type AppError struct {
	Code       ErrorCode
	Message    string
	RetryAfter int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewBadRequest creates a BAD_REQUEST error
func NewBadRequest(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message}
}

// NewRateLimited creates a RATE_LIMITED error carrying the wait in seconds
func NewRateLimited(message string, retryAfter int) *AppError {
	return &AppError{Code: CodeRateLimited, Message: message, RetryAfter: retryAfter}
}

// NewNotFound creates a NOT_FOUND error
func NewNotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// NewForbidden creates a FORBIDDEN error
func NewForbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

// NewInternal wraps an unexpected failure
func NewInternal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Something went wrong. Please try again later.",
		Err:     err,
	}
}
