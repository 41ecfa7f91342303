package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation          ErrorType = "validation"
	ErrorTypeUnauthorized        ErrorType = "unauthorized"
	ErrorTypeDecisionUnavailable ErrorType = "decision_unavailable"
	ErrorTypeAuthorityBlock      ErrorType = "authority_block"
	ErrorTypeUnknownTool         ErrorType = "unknown_tool"
	ErrorTypeExecutor            ErrorType = "executor"
	ErrorTypeExternal            ErrorType = "external"
	ErrorTypeInternal            ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Validation errors are rejected before any remote call
	ErrInvalidInput    = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrMissingToolName = NewDomainError(ErrorTypeValidation, "tool name is required", nil)
	ErrEmptyMessages   = NewDomainError(ErrorTypeValidation, "messages cannot be empty", nil)

	// Authorization errors
	ErrUnauthorized = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidToken = NewDomainError(ErrorTypeUnauthorized, "invalid authentication token", nil)

	// Decision-path errors; every one of these resolves to a block outcome
	ErrDecisionUnavailable = NewDomainError(ErrorTypeDecisionUnavailable, "decision authority unavailable", nil)
	ErrDecisionTimeout     = NewDomainError(ErrorTypeDecisionUnavailable, "decision authority timed out", nil)
	ErrDecisionMalformed   = NewDomainError(ErrorTypeDecisionUnavailable, "decision authority returned a malformed response", nil)

	// Dispatch errors
	ErrUnknownTool   = NewDomainError(ErrorTypeUnknownTool, "unknown tool", nil)
	ErrExecutorError = NewDomainError(ErrorTypeExecutor, "tool execution failed", nil)

	// Infrastructure errors
	ErrInternal              = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrAccountingUnavailable = NewDomainError(ErrorTypeExternal, "budget accounting service unavailable", nil)
)

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeUnauthorized
	}
	return false
}

// IsDecisionUnavailableError checks if an error means the authority could not
// be consulted. Callers must treat this as a block, never as permission.
func IsDecisionUnavailableError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeDecisionUnavailable
	}
	return false
}

// IsUnknownToolError checks if an error is an unknown-tool error
func IsUnknownToolError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeUnknownTool
	}
	return false
}

// IsExecutorError checks if an error came from a tool's own execution
func IsExecutorError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeExecutor
	}
	return false
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeInternal
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
