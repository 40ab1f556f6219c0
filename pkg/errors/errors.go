// Package errors provides typed errors for the application
package errors

import stderrors "errors"

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypePermission
	ErrorTypeInternal
)

// String returns a short name used in logs
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypePermission:
		return "permission"
	default:
		return "internal"
	}
}

// TypedError is implemented by every error kind of this package
type TypedError interface {
	error
	Type() ErrorType
}

type baseError struct {
	msg string
	typ ErrorType
}

func (e *baseError) Error() string {
	return e.msg
}

func (e *baseError) Type() ErrorType {
	return e.typ
}

// ValidationError represents invalid input or an invalid state transition
type ValidationError struct {
	baseError
}

// NewValidationError creates a new ValidationError
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{baseError{msg: msg, typ: ErrorTypeValidation}}
}

// NotFoundError represents a correlation miss
type NotFoundError struct {
	baseError
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{baseError{msg: msg, typ: ErrorTypeNotFound}}
}

// ConflictError represents a lost race on shared state
type ConflictError struct {
	baseError
}

// NewConflictError creates a new ConflictError
func NewConflictError(msg string) *ConflictError {
	return &ConflictError{baseError{msg: msg, typ: ErrorTypeConflict}}
}

// PermissionError represents an action from a chat or user without access
type PermissionError struct {
	baseError
}

// NewPermissionError creates a new PermissionError
func NewPermissionError(msg string) *PermissionError {
	return &PermissionError{baseError{msg: msg, typ: ErrorTypePermission}}
}

// InternalError represents a collaborator or infrastructure failure
type InternalError struct {
	baseError
}

// NewInternalError creates a new InternalError
func NewInternalError(msg string) *InternalError {
	return &InternalError{baseError{msg: msg, typ: ErrorTypeInternal}}
}

// TypeOf returns the type of the first typed error in the chain.
// Untyped errors are reported as internal.
func TypeOf(err error) ErrorType {
	var typed TypedError
	if stderrors.As(err, &typed) {
		return typed.Type()
	}
	return ErrorTypeInternal
}

// IsValidationError checks if err wraps a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsNotFoundError checks if err wraps a NotFoundError
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsConflictError checks if err wraps a ConflictError
func IsConflictError(err error) bool {
	var target *ConflictError
	return stderrors.As(err, &target)
}

// IsPermissionError checks if err wraps a PermissionError
func IsPermissionError(err error) bool {
	var target *PermissionError
	return stderrors.As(err, &target)
}

// IsInternalError checks if err wraps an InternalError
func IsInternalError(err error) bool {
	var target *InternalError
	return stderrors.As(err, &target)
}
