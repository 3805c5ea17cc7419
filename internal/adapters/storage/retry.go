package storage

import (
	"context"

	"trader-portfolio-api/internal/retry"
)

// RetryingStore wraps a SnapshotStore with retry logic
type RetryingStore struct {
	store  SnapshotStore
	config *retry.Config
}

// NewRetryingStore creates a new RetryingStore
func NewRetryingStore(store SnapshotStore, config *retry.Config) *RetryingStore {
	if config == nil {
		config = retry.DefaultConfig()
	}
	return &RetryingStore{
		store:  store,
		config: config,
	}
}

// Put implements SnapshotStore.Put with retry logic
func (r *RetryingStore) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	return retry.Do(ctx, r.config, func(ctx context.Context) error {
		return r.store.Put(ctx, key, data, opts)
	})
}

// Get implements SnapshotStore.Get with retry logic
func (r *RetryingStore) Get(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := retry.Do(ctx, r.config, func(ctx context.Context) error {
		data, err := r.store.Get(ctx, key)
		if err != nil {
			return err
		}
		result = data
		return nil
	})
	return result, err
}

// Exists implements SnapshotStore.Exists with retry logic
func (r *RetryingStore) Exists(ctx context.Context, key string) (bool, error) {
	var result bool
	err := retry.Do(ctx, r.config, func(ctx context.Context) error {
		exists, err := r.store.Exists(ctx, key)
		if err != nil {
			return err
		}
		result = exists
		return nil
	})
	return result, err
}

// Close implements SnapshotStore.Close
func (r *RetryingStore) Close() error {
	return r.store.Close()
}
