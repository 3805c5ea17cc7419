package repositories

import (
	"context"
	"errors"
	"fmt"
)

// Common repository errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidArgument is returned when a query argument is unusable
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConnection is returned when the warehouse connection fails
	ErrConnection = errors.New("warehouse connection error")

	// ErrQuery is returned when a warehouse query fails
	ErrQuery = errors.New("warehouse query error")

	// ErrTimeout is returned when an operation times out
	ErrTimeout = errors.New("operation timeout")

	// ErrSessionClosed is returned when a closed session is used
	ErrSessionClosed = errors.New("session closed")
)

// RepositoryError represents a repository-specific error with additional context
type RepositoryError struct {
	Op      string // Operation that failed
	Entity  string // Table or entity type
	Err     error  // Underlying error
	Message string // Human-readable message
}

// Error implements the error interface
func (e *RepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s operation failed: %v", e.Entity, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new repository error
func NewRepositoryError(op, entity string, err error) *RepositoryError {
	return &RepositoryError{
		Op:     op,
		Entity: entity,
		Err:    err,
	}
}

// QueryError wraps a failed query. Context expiry is kept visible to errors.Is.
func QueryError(op, entity string, err error) *RepositoryError {
	kind := ErrQuery
	if errors.Is(err, context.DeadlineExceeded) {
		kind = ErrTimeout
	}
	return &RepositoryError{
		Op:     op,
		Entity: entity,
		Err:    fmt.Errorf("%w: %w", kind, err),
	}
}

// ConnectionError creates a "connection" repository error
func ConnectionError(err error) *RepositoryError {
	return &RepositoryError{
		Op:      "connect",
		Entity:  "warehouse",
		Err:     fmt.Errorf("%w: %w", ErrConnection, err),
		Message: fmt.Sprintf("warehouse connection failed: %v", err),
	}
}

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConnection checks if an error is a "connection" error
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsTimeout checks if an error is a timeout, whether reported by the repository or the context
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
