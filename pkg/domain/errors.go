package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError so transport layers can map it without parsing text.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindForbidden    ErrorKind = "forbidden"
	KindUnauthorized ErrorKind = "unauthorized"
)

// DomainError is an error raised by business rules or lookups.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error { return e.Err }

// NewValidationError creates an error for invalid caller input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewConflictError creates an error for a concurrent modification.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// NewForbiddenError creates an error for an operation the caller may not perform.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError creates an error for a missing or invalid identity.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Kind: KindUnauthorized, Message: message}
}

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsNotFound reports whether err is a not-found DomainError.
func IsNotFound(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNotFound
}

// IsValidation reports whether err is a validation DomainError.
func IsValidation(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindValidation
}

// IsConflict reports whether err is a conflict DomainError.
func IsConflict(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindConflict
}

// IsForbidden reports whether err is a forbidden DomainError.
func IsForbidden(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindForbidden
}
