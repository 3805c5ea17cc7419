package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"trader-portfolio-api/internal/retry"
)

// flakyStore fails the first failures calls to Put with a retryable error
type flakyStore struct {
	*MemoryStore
	failures int
	calls    int
}

func (f *flakyStore) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	f.calls++
	if f.calls <= f.failures {
		return NewStorageError("Put", key, ErrStorageUnavailable, true)
	}
	return f.MemoryStore.Put(ctx, key, data, opts)
}

func TestRetryingStore(t *testing.T) {
	ctx := context.Background()
	config := &retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffFactor: 2.0}

	t.Run("RecoversFromTransientFailure", func(t *testing.T) {
		inner := &flakyStore{MemoryStore: NewMemoryStore(), failures: 2}
		store := NewRetryingStore(inner, config)

		if err := store.Put(ctx, "a.json", []byte("{}"), nil); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if inner.calls != 3 {
			t.Errorf("Expected 3 attempts, got %d", inner.calls)
		}

		exists, err := store.Exists(ctx, "a.json")
		if err != nil || !exists {
			t.Errorf("Expected snapshot to exist, got exists=%v err=%v", exists, err)
		}
	})

	t.Run("GivesUpAfterMaxAttempts", func(t *testing.T) {
		inner := &flakyStore{MemoryStore: NewMemoryStore(), failures: 10}
		store := NewRetryingStore(inner, config)

		err := store.Put(ctx, "a.json", []byte("{}"), nil)
		if !errors.Is(err, ErrStorageUnavailable) {
			t.Fatalf("Expected ErrStorageUnavailable, got %v", err)
		}
		if inner.calls != 3 {
			t.Errorf("Expected 3 attempts, got %d", inner.calls)
		}
	})

	t.Run("DoesNotRetryNotFound", func(t *testing.T) {
		store := NewRetryingStore(NewMemoryStore(), config)

		if _, err := store.Get(ctx, "missing.json"); !IsNotFound(err) {
			t.Errorf("Expected not found error, got %v", err)
		}
	})
}
