package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NotFound indicates an unknown source label or a missing file/record
	NotFound ErrorCode = "NOT_FOUND"
	// OutOfBounds indicates a path that escapes the source root
	OutOfBounds ErrorCode = "OUT_OF_BOUNDS"
	// NotAFile indicates the path denotes a directory or other non-file
	NotAFile ErrorCode = "NOT_A_FILE"
	// Unreadable indicates content that is not decodable as text
	Unreadable ErrorCode = "UNREADABLE"
	// InvalidFormat indicates a malformed record path
	InvalidFormat ErrorCode = "INVALID_FORMAT"
	// Unsupported indicates a capability not available for this source kind
	Unsupported ErrorCode = "UNSUPPORTED"
	// AuthFailure indicates bad credentials or a bad login URL
	AuthFailure ErrorCode = "AUTH_FAILURE"
	// RateLimited indicates the backend rejected the call with 429
	RateLimited ErrorCode = "RATE_LIMITED"
	// UpstreamError indicates a non-200 backend response or transport failure
	UpstreamError ErrorCode = "UPSTREAM_ERROR"
	// ToolMissing indicates the external search executable is absent
	ToolMissing ErrorCode = "TOOL_MISSING"
)

// SourceError represents a source-layer error with a stable code
type SourceError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error
}

// New creates a new SourceError
func New(code ErrorCode, message string) *SourceError {
	return &SourceError{Code: code, Message: message}
}

// Newf creates a new SourceError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SourceError {
	return &SourceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new SourceError wrapping an underlying cause
func Wrap(code ErrorCode, message string, cause error) *SourceError {
	return &SourceError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SourceError) Unwrap() error {
	return e.cause
}

// CodeOf extracts the error code from err, or "" when err carries none
func CodeOf(err error) ErrorCode {
	var se *SourceError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
