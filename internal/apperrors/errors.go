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

// ErrConflict indicates the operation conflicts with the current state of the
// resource (illegal status transition, cyclic parent, etc.).
var ErrConflict = errors.New("conflict with current resource state")

// ErrForbidden indicates the caller is not allowed to perform the operation
// (e.g. deleting a system account). Distinct from ErrValidation so handlers
// can surface a permission-specific response.
var ErrForbidden = errors.New("operation not permitted")

// ErrConsistency indicates an internal ledger defect: stored state that
// violates an invariant normal input can never produce, such as a posted
// entry whose lines do not balance. Never user-triggerable; the entry is
// quarantined for manual review rather than silently accepted.
var ErrConsistency = errors.New("ledger consistency violation")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps an underlying error with an HTTP-ish status code and a
// human-readable message. Repositories use it to attach context to low-level
// database failures.
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

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that satisfies errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
