package storage

import (
	"context"
	"fmt"
	"strings"

	"trader-portfolio-api/internal/retry"
)

// StorageType represents the type of snapshot store
type StorageType string

const (
	StorageTypeNone   StorageType = "none"
	StorageTypeLocal  StorageType = "local"
	StorageTypeS3     StorageType = "s3"
	StorageTypeMemory StorageType = "memory"
)

// Factory creates SnapshotStore instances based on configuration
type Factory struct {
	retryConfig *retry.Config
}

// NewFactory creates a new storage factory
func NewFactory(retryConfig *retry.Config) *Factory {
	return &Factory{
		retryConfig: retryConfig,
	}
}

// Create creates a SnapshotStore based on the provided configuration
func (f *Factory) Create(ctx context.Context, config *StorageConfig) (SnapshotStore, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	storageType := StorageType(strings.ToLower(config.Type))

	var store SnapshotStore
	var err error

	switch storageType {
	case "", StorageTypeNone:
		return NopStore{}, nil
	case StorageTypeLocal:
		store, err = f.createLocalStore(config)
	case StorageTypeS3:
		store, err = NewS3Store(ctx, config.Bucket, config.Region)
	case StorageTypeMemory:
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", config.Type, err)
	}

	// Wrap with retry logic if configured
	if f.retryConfig != nil {
		store = NewRetryingStore(store, f.retryConfig)
	}

	return store, nil
}

// createLocalStore creates a local filesystem store
func (f *Factory) createLocalStore(config *StorageConfig) (SnapshotStore, error) {
	basePath := config.BasePath
	if basePath == "" {
		basePath = "./data/snapshots"
	}
	return NewLocalStore(basePath)
}

// DefaultFactory returns a factory with default retry configuration
func DefaultFactory() *Factory {
	return NewFactory(retry.DefaultConfig())
}

// CreateFromConfig is a convenience function to create a store from config
func CreateFromConfig(ctx context.Context, config *StorageConfig) (SnapshotStore, error) {
	return DefaultFactory().Create(ctx, config)
}
