package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Memory is a process-local TTL cache. Expired entries are removed in the
// background, so a long-running process does not keep them.
type Memory struct {
	items     *ttlcache.Cache[string, []byte]
	closeOnce sync.Once
}

// NewMemory creates a memory cache whose entries live for ttl
func NewMemory(ttl time.Duration) *Memory {
	items := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](ttl),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go items.Start()

	return &Memory{items: items}
}

// GetMany implements Cache.GetMany
func (m *Memory) GetMany(_ context.Context, keys []string) (map[string][]byte, error) {
	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if item := m.items.Get(key); item != nil {
			values[key] = item.Value()
		}
	}
	return values, nil
}

// SetMany implements Cache.SetMany
func (m *Memory) SetMany(_ context.Context, entries map[string][]byte) error {
	for key, value := range entries {
		stored := make([]byte, len(value))
		copy(stored, value)
		m.items.Set(key, stored, ttlcache.DefaultTTL)
	}
	return nil
}

// Len returns the number of stored entries
func (m *Memory) Len() int {
	return m.items.Len()
}

// Close stops the expiry loop and drops all entries
func (m *Memory) Close() error {
	m.closeOnce.Do(func() {
		m.items.Stop()
		m.items.DeleteAll()
	})
	return nil
}
