package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAlreadyGranted indicates a credit grant was attempted on a profile whose
// balance has not returned to zero. Not transient; callers must not retry.
var ErrAlreadyGranted = errors.New("credit has already been granted to this farmer")

// ErrFrozen indicates the credit profile is frozen and yields no available credit.
var ErrFrozen = errors.New("credit profile is frozen")

// ErrInvalidState indicates an illegal request-state transition,
// e.g. cancelling a request that is no longer pending.
var ErrInvalidState = errors.New("invalid state transition")

// ErrConflict indicates a concurrent modification was detected (version mismatch).
// Retried internally a bounded number of times before surfacing.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrForbidden indicates the actor is not allowed to perform the operation.
var ErrForbidden = errors.New("forbidden")

// AppError wraps a backing-store or internal failure with a status code and a
// human-readable message. Store failures are propagated unchanged to the caller.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
