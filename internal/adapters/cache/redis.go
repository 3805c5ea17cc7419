package cache

import (
	"context"
	"fmt"
	"time"

	"trader-portfolio-api/internal/tracing"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Default redis timeouts. An unreachable cache must fail well inside the invocation budget.
const (
	DefaultRedisDialTimeout = 500 * time.Millisecond
	DefaultRedisIOTimeout   = 250 * time.Millisecond
)

// RedisOptions configures the redis cache
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	TTL         time.Duration
	DialTimeout time.Duration
	IOTimeout   time.Duration
}

// Redis stores token data in a shared redis instance
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedis creates a redis cache. No connection is made until first use.
func NewRedis(opts RedisOptions, logger *logrus.Logger) *Redis {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultRedisDialTimeout
	}
	if opts.IOTimeout <= 0 {
		opts.IOTimeout = DefaultRedisIOTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.IOTimeout,
		WriteTimeout: opts.IOTimeout,
		MaxRetries:   -1,
	})
	return &Redis{client: client, ttl: opts.TTL, logger: logger}
}

// GetMany implements Cache.GetMany with a single MGET
func (r *Redis) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	values := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	err := tracing.Capture(ctx, "Redis.MGet", func(ctx1 context.Context) error {
		prefixed := make([]string, len(keys))
		for i, key := range keys {
			prefixed[i] = KeyPrefix + key
		}

		results, err := r.client.MGet(ctx1, prefixed...).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
		for i, result := range results {
			if s, ok := result.(string); ok {
				values[keys[i]] = []byte(s)
			}
		}

		tracing.AddMetadata(ctx1, "redis.operation", "MGET")
		tracing.AddMetadata(ctx1, "redis.keys", len(keys))
		return nil
	})
	if err != nil {
		r.logger.WithError(err).WithField("keys", len(keys)).Warn("Cache read failed")
		return nil, err
	}

	return values, nil
}

// SetMany implements Cache.SetMany with one pipelined round trip
func (r *Redis) SetMany(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	err := tracing.Capture(ctx, "Redis.SetMany", func(ctx1 context.Context) error {
		_, err := r.client.Pipelined(ctx1, func(pipe redis.Pipeliner) error {
			for key, value := range entries {
				pipe.Set(ctx1, KeyPrefix+key, value, r.ttl)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}

		tracing.AddMetadata(ctx1, "redis.operation", "SET")
		tracing.AddMetadata(ctx1, "redis.keys", len(entries))
		return nil
	})
	if err != nil {
		r.logger.WithError(err).WithField("keys", len(entries)).Warn("Cache write failed")
	}
	return err
}

// Close implements Cache.Close
func (r *Redis) Close() error {
	return r.client.Close()
}
