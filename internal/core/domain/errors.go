// Package domain defines the core protocol types for wirehttp.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a server error with a structured error code.
// Codes follow the format WH-<AREA>-<NNNN>, where the first digit of the
// numeric part mirrors the HTTP status class the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "WH-REQ-4001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Server lifecycle errors (SRV)
// ============================================================================

var (
	// ErrBindFailed indicates the listening socket could not be bound.
	ErrBindFailed = NewDomainError("WH-SRV-5001", "failed to bind listener")

	// ErrServerClosed is returned by operations on a server that was shut down.
	ErrServerClosed = NewDomainError("WH-SRV-5030", "server closed")
)

// ============================================================================
// Request parsing errors (REQ)
// ============================================================================

var (
	// ErrEmptyRequest indicates the peer closed before sending any bytes.
	ErrEmptyRequest = NewDomainError("WH-REQ-4000", "empty request")

	// ErrMalformedRequestLine indicates the request line lacks a method or path.
	ErrMalformedRequestLine = NewDomainError("WH-REQ-4001", "malformed request line")

	// ErrUnknownMethod indicates the method token is not a supported method.
	ErrUnknownMethod = NewDomainError("WH-REQ-4002", "unknown method")

	// ErrHeaderTooLarge indicates a head line or the whole head exceeded its limit.
	ErrHeaderTooLarge = NewDomainError("WH-REQ-4003", "request head too large")

	// ErrReadFailed indicates an I/O failure while reading the request head.
	ErrReadFailed = NewDomainError("WH-REQ-5000", "read failed")
)

// ============================================================================
// Routing errors (RTE)
// ============================================================================

var (
	// ErrNilHandler indicates a registration attempt without a handler.
	ErrNilHandler = NewDomainError("WH-RTE-4000", "nil handler")

	// ErrNoMatchingRoute indicates no handler is registered for the path and method.
	ErrNoMatchingRoute = NewDomainError("WH-RTE-4040", "no matching route")

	// ErrRouteAlreadyRegistered indicates the (path, method) pair is taken.
	ErrRouteAlreadyRegistered = NewDomainError("WH-RTE-4090", "path already exists")
)

// ============================================================================
// Response errors (RES, RND)
// ============================================================================

var (
	// ErrAlreadySent indicates a second send on a strict response.
	ErrAlreadySent = NewDomainError("WH-RES-4090", "response already sent")

	// ErrWriteFailed indicates writing or flushing the response failed.
	ErrWriteFailed = NewDomainError("WH-RES-5000", "write failed")

	// ErrRenderNotFound indicates the view file is missing or unreadable as text.
	ErrRenderNotFound = NewDomainError("WH-RND-4040", "view not found")

	// ErrRenderIO indicates the view file could not be opened.
	ErrRenderIO = NewDomainError("WH-RND-5000", "view open failed")
)

// ============================================================================
// Configuration errors (CFG)
// ============================================================================

var (
	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = NewDomainError("WH-CFG-4000", "invalid configuration")
)
