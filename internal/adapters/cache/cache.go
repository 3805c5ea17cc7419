// Package cache stores token data between invocations of a warm process.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trader-portfolio-api/internal/config"

	"github.com/sirupsen/logrus"
)

// KeyPrefix namespaces token entries in shared caches
const KeyPrefix = "portfolio:token:"

// ErrCacheUnavailable is returned when the backing cache cannot be reached
var ErrCacheUnavailable = errors.New("cache unavailable")

// Cache stores JSON encoded token data by token address.
// Reads and writes take a whole batch so a slow backend costs one round trip.
type Cache interface {
	// GetMany returns the cached values of keys; misses are absent from the map
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)

	// SetMany stores entries for the configured TTL
	SetMany(ctx context.Context, entries map[string][]byte) error

	Close() error
}

// Cache types
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// New creates the cache selected by configuration
func New(cfg config.CacheConfig, logger *logrus.Logger) (Cache, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	switch strings.ToLower(cfg.Type) {
	case "", TypeNone:
		return Nop{}, nil
	case TypeMemory:
		return NewMemory(ttl), nil
	case TypeRedis:
		return NewRedis(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      ttl,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

// Nop never stores anything
type Nop struct{}

// GetMany implements Cache.GetMany
func (Nop) GetMany(context.Context, []string) (map[string][]byte, error) {
	return map[string][]byte{}, nil
}

// SetMany implements Cache.SetMany
func (Nop) SetMany(context.Context, map[string][]byte) error { return nil }

// Close implements Cache.Close
func (Nop) Close() error { return nil }
