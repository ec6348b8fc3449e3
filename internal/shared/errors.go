package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus indicates an operation not allowed for the
	// record's current status.
	ErrInvalidStatus = errors.New("invalid status for operation")
)
