package storage

import (
	"context"
	"os"
	"path/filepath"
)

// LocalStore implements SnapshotStore on the local filesystem
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a new LocalStore rooted at basePath
func NewLocalStore(basePath string) (*LocalStore, error) {
	// Ensure base path exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, NewStorageError("NewLocalStore", "", err, false)
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, NewStorageError("NewLocalStore", "", err, false)
	}

	return &LocalStore{basePath: absPath}, nil
}

// Put implements SnapshotStore.Put
func (l *LocalStore) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Put", key, err, false)
	}

	filePath := l.getFilePath(key)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return NewStorageError("Put", key, err, true)
	}

	// Each writer gets its own temp file; readers never see a partial snapshot
	tmp, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return NewStorageError("Put", key, err, true)
	}
	tempPath := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tempPath, 0644)
	}
	if err == nil {
		err = os.Rename(tempPath, filePath)
	}
	if err != nil {
		os.Remove(tempPath)
		return NewStorageError("Put", key, err, true)
	}

	return nil
}

// Get implements SnapshotStore.Get
func (l *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Get", key, err, false)
	}

	data, err := os.ReadFile(l.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageError("Get", key, ErrSnapshotNotFound, false)
		}
		return nil, NewStorageError("Get", key, err, true)
	}

	return data, nil
}

// Exists implements SnapshotStore.Exists
func (l *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err, false)
	}

	_, err := os.Stat(l.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, NewStorageError("Exists", key, err, true)
	}

	return true, nil
}

// Close implements SnapshotStore.Close
func (l *LocalStore) Close() error {
	return nil
}

func (l *LocalStore) getFilePath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}
