package errors

import "errors"

// Application-wide errors shared by repositories, services and handlers.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict signals a uniqueness violation, e.g. an account for the same
	// external identity was inserted concurrently.
	ErrConflict = errors.New("resource state conflict")
)
