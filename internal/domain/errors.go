package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationError reports invalid caller input. No I/O happens before it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// NotFoundError is a domain-level "not found" carrying a client-facing message.
// It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError builds a NotFoundError with the given message.
func NewNotFoundError(msg string) error {
	return &NotFoundError{Message: msg}
}

// ConflictError reports a duplicate business key (email, favorite pair).
// It matches ErrAlreadyExists with errors.Is.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrAlreadyExists }

// NewConflictError builds a ConflictError with the given message.
func NewConflictError(msg string) error {
	return &ConflictError{Message: msg}
}

// ExternalServiceError reports a failed call to an external dependency: a timeout,
// an error status, a transport failure or a short-circuited call.
type ExternalServiceError struct {
	Service string
	// ShortCircuited is set when the call was rejected without reaching the network.
	ShortCircuited bool
	Err            error
}

func (e *ExternalServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s request failed", e.Service)
	}
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsExternalService reports whether err is (or wraps) an ExternalServiceError.
func IsExternalService(err error) bool {
	var e *ExternalServiceError
	return errors.As(err, &e)
}
