package service

import (
	"errors"
	"fmt"
)

// ValidationError marks missing or invalid caller input. It never wraps a
// collaborator error; the request was rejected before any fetch happened.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrPermissionDenied matches any PermissionError via errors.Is.
var ErrPermissionDenied = errors.New("permission denied")

// PermissionError marks an authorization failure (HTTP 401/403) from an
// upstream provider. Error() is a generic user-facing message: provider
// bodies can carry account and tenant details that must not surface in
// API responses. The upstream cause is reachable only through Cause().
type PermissionError struct {
	Op       string
	Resource string
	cause    error
}

func NewPermissionError(op, resource string, cause error) *PermissionError {
	return &PermissionError{Op: op, Resource: resource, cause: cause}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("access to %s denied: insufficient permissions", e.Resource)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// Cause returns the upstream error for diagnostics. There is no Unwrap:
// the upstream text never joins the error chain callers render.
func (e *PermissionError) Cause() error {
	return e.cause
}
