package storage

import (
	"context"
	"fmt"
	"strings"
)

// PutOptions provides options for storing snapshots
type PutOptions struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// SnapshotStore archives portfolio responses.
// Implementations must be safe for concurrent use.
type SnapshotStore interface {
	// Put saves data under key, replacing any previous snapshot
	Put(ctx context.Context, key string, data []byte, opts *PutOptions) error

	// Get returns the snapshot stored under key
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists checks if a snapshot exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// Close cleans up any resources used by the store
	Close() error
}

// StorageConfig represents configuration for snapshot stores
type StorageConfig struct {
	Type     string `json:"type" yaml:"type"`           // "none", "local", "memory" or "s3"
	BasePath string `json:"base_path" yaml:"base_path"` // For local storage
	Bucket   string `json:"bucket" yaml:"bucket"`       // For S3
	Region   string `json:"region" yaml:"region"`       // For S3
}

// SnapshotKey returns the key a category snapshot is archived under
func SnapshotKey(category, fetchDate string) string {
	return fmt.Sprintf("snapshots/%s/%s.json", sanitizeSegment(category), sanitizeSegment(fetchDate))
}

// sanitizeSegment keeps a key segment from escaping its directory
func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "-").Replace(s)
	if s == "" {
		return "_"
	}
	return s
}

// validateKey rejects empty keys and keys that could leave the store root
func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}

	return nil
}
