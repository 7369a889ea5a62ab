package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	// ErrNotAuthenticated is returned when an operation that requires an
	// authenticated session runs while the session is in any other state.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound is returned when a record id is not present in the
	// local collection.
	ErrNotFound = errors.New("requested resource not found")
)
