// Package history persists a record of every command the server relayed.
package history

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrConnectionFailed is returned when database connection fails.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrMigrationFailed is returned when database migration fails.
	ErrMigrationFailed = errors.New("database migration failed")

	// ErrInvalidEntry is returned when an entry is missing required fields.
	ErrInvalidEntry = errors.New("invalid history entry")
)

// StoreError wraps errors with additional context.
type StoreError struct {
	Op      string // Operation that failed (e.g., "Record")
	ID      string // Entry ID if applicable
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s entry %s: %s", e.Op, e.ID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, id, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		ID:      id,
		Message: message,
		Err:     err,
	}
}
