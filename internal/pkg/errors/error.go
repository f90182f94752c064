package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict: resource already exists")
	ErrInternal     = errors.New("internal server error")
	ErrBadRequest   = errors.New("bad request")
)

// Billing engine errors
var (
	// ErrAlreadyExists signals an idempotency hit: an invoice for the
	// tenant/period key already exists. Batch runs count this as a skip.
	ErrAlreadyExists = errors.New("invoice already exists for this billing period")

	// ErrInvalidTransition is returned when a requested invoice status change
	// is not allowed by the state machine. No mutation is performed.
	ErrInvalidTransition = errors.New("invalid invoice status transition")

	// ErrAlreadySettled is returned when recording a payment against an
	// invoice that is already paid.
	ErrAlreadySettled = errors.New("invoice already settled")

	// ErrCancelled is returned when operating on a cancelled invoice.
	ErrCancelled = errors.New("invoice is cancelled")

	// ErrConfiguration is returned when a tenant's billing profile is missing
	// or invalid, e.g. a non-positive rate. Recorded per tenant in batch runs.
	ErrConfiguration = errors.New("invalid billing configuration")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
