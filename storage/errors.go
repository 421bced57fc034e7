package storage

import "errors"

// Storage error constants
var (
	// ErrNotFound is returned when an IOC does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateIOC is returned when an IOC with the same type and value already exists
	ErrDuplicateIOC = errors.New("IOC with this type and value already exists")

	// ErrInvalidID is returned when an IOC id is empty or malformed
	ErrInvalidID = errors.New("invalid IOC id")
)
