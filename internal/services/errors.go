package services

import "errors"

// Domain error taxonomy. Lifecycle services wrap these with context so
// handlers can classify failures with errors.Is.
var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStateTransition means a lifecycle method was called on an
	// entity that is not in the expected source state.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrInvalidOption means a change-request decision referenced an option
	// index outside the analysis option list.
	ErrInvalidOption = errors.New("invalid option")

	// ErrValidation means a required field was missing or malformed on create.
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable means the persistence layer failed; callers may
	// retry with backoff. Services never retry internally.
	ErrStoreUnavailable = errors.New("store unavailable")
)
