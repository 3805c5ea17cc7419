package storage

import (
	"errors"
	"fmt"
)

var (
	ErrSnapshotNotFound   = errors.New("snapshot not found")
	ErrInvalidKey         = errors.New("invalid snapshot key")
	ErrInvalidConfig      = errors.New("invalid snapshot store configuration")
	ErrStorageUnavailable = errors.New("snapshot store unavailable")
)

// StorageError wraps a failed snapshot store call
type StorageError struct {
	Op        string
	Key       string
	Err       error
	Retryable bool // transient failures are retried by RetryingStore
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("snapshot %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("snapshot %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error indicates a retryable condition
func (e *StorageError) IsRetryable() bool {
	return e.Retryable
}

// NewStorageError creates a new StorageError
func NewStorageError(op, key string, err error, retryable bool) *StorageError {
	return &StorageError{
		Op:        op,
		Key:       key,
		Err:       err,
		Retryable: retryable,
	}
}

// IsNotFound returns true if the error indicates a snapshot was not found
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound)
}
