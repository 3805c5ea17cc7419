package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFactory(t *testing.T) {
	factory := DefaultFactory()
	ctx := context.Background()

	t.Run("CreateNoneStorage", func(t *testing.T) {
		for _, storageType := range []string{"", "none", "NONE"} {
			store, err := factory.Create(ctx, &StorageConfig{Type: storageType})
			if err != nil {
				t.Fatalf("Failed to create %q storage: %v", storageType, err)
			}
			if _, ok := store.(NopStore); !ok {
				t.Errorf("Expected NopStore for %q, got %T", storageType, store)
			}
		}
	})

	t.Run("CreateMemoryStorage", func(t *testing.T) {
		store, err := factory.Create(ctx, &StorageConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("Failed to create memory storage: %v", err)
		}
		defer store.Close()

		if err := store.Put(ctx, "test.json", []byte("{}"), nil); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		data, err := store.Get(ctx, "test.json")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}

		if string(data) != "{}" {
			t.Errorf("Data mismatch: got %q, want %q", string(data), "{}")
		}
	})

	t.Run("CreateLocalStorage", func(t *testing.T) {
		tempDir := t.TempDir()

		store, err := factory.Create(ctx, &StorageConfig{Type: "local", BasePath: tempDir})
		if err != nil {
			t.Fatalf("Failed to create local storage: %v", err)
		}
		defer store.Close()

		if err := store.Put(ctx, "snapshots/whales/2024-10-01.json", []byte("{}"), nil); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		filePath := filepath.Join(tempDir, "snapshots", "whales", "2024-10-01.json")
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			t.Error("File should exist on disk")
		}
	})

	t.Run("CreateS3StorageWithoutBucket", func(t *testing.T) {
		if _, err := factory.Create(ctx, &StorageConfig{Type: "s3"}); err == nil {
			t.Error("Expected error when bucket is missing")
		}
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		if _, err := factory.Create(ctx, &StorageConfig{Type: "gcs"}); err == nil {
			t.Error("Expected error for unsupported storage type")
		}
	})

	t.Run("NilConfig", func(t *testing.T) {
		if _, err := factory.Create(ctx, nil); err == nil {
			t.Error("Expected error for nil config")
		}
	})
}

func TestSnapshotKey(t *testing.T) {
	tests := []struct {
		category  string
		fetchDate string
		want      string
	}{
		{"whales", "2024-10-01", "snapshots/whales/2024-10-01.json"},
		{"smart money", "2024-10-01T12:00:00Z", "snapshots/smart money/2024-10-01T12-00-00Z.json"},
		{"../etc", "x", "snapshots/__etc/x.json"},
		{"", "", "snapshots/_/_.json"},
	}

	for _, tt := range tests {
		if got := SnapshotKey(tt.category, tt.fetchDate); got != tt.want {
			t.Errorf("SnapshotKey(%q, %q) = %q, want %q", tt.category, tt.fetchDate, got, tt.want)
		}
	}
}
