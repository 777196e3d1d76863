package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the outcome categories every operation resolves to.
// Handlers map these to HTTP statuses; services attach context via the
// constructors below and callers test with errors.Is.
var (
	// ErrNotFound means a referenced entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied means the ownership chain check failed.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidState means a business precondition was violated
	// (wrong date for check-in/out, refunding a non-completed payment).
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput means the request payload itself is malformed
	// (missing field, unknown enum value). User-correctable, unlike
	// ErrInvalidState which rejects a well-formed request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBrokenLink means a data-integrity violation was detected, such as
	// a payment without a reservation id. Server-side fault, not user input.
	ErrBrokenLink = errors.New("broken link")
)

// NotFoundError wraps ErrNotFound with entity context.
func NotFoundError(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// AccessDeniedError wraps ErrAccessDenied with a reason.
func AccessDeniedError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrAccessDenied)
}

// InvalidInputError wraps ErrInvalidInput with a reason.
func InvalidInputError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidInput)
}

// InvalidStateError wraps ErrInvalidState with a reason.
func InvalidStateError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidState)
}

// BrokenLinkError wraps ErrBrokenLink with a reason.
func BrokenLinkError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrBrokenLink)
}
