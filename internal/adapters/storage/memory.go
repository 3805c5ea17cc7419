package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process memory. Used by tests and the dev server.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

// Put implements SnapshotStore.Put
func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Put", key, err, false)
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = stored
	return nil
}

// Get implements SnapshotStore.Get
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[key]
	if !ok {
		return nil, NewStorageError("Get", key, ErrSnapshotNotFound, false)
	}

	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// Exists implements SnapshotStore.Exists
func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[key]
	return ok, nil
}

// Keys returns the stored keys
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		keys = append(keys, k)
	}
	return keys
}

// Close implements SnapshotStore.Close
func (m *MemoryStore) Close() error {
	return nil
}

// NopStore discards every snapshot
type NopStore struct{}

// Put implements SnapshotStore.Put
func (NopStore) Put(context.Context, string, []byte, *PutOptions) error { return nil }

// Get implements SnapshotStore.Get
func (NopStore) Get(_ context.Context, key string) ([]byte, error) {
	return nil, NewStorageError("Get", key, ErrSnapshotNotFound, false)
}

// Exists implements SnapshotStore.Exists
func (NopStore) Exists(context.Context, string) (bool, error) { return false, nil }

// Close implements SnapshotStore.Close
func (NopStore) Close() error { return nil }
