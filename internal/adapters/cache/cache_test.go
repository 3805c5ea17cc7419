package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"trader-portfolio-api/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestNew(t *testing.T) {
	tests := []struct {
		cacheType string
		want      string
		wantErr   bool
	}{
		{"", "cache.Nop", false},
		{"none", "cache.Nop", false},
		{"memory", "*cache.Memory", false},
		{"REDIS", "*cache.Redis", false},
		{"memcached", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.cacheType, func(t *testing.T) {
			c, err := New(config.CacheConfig{Type: tt.cacheType, RedisAddr: "localhost:6379"}, testLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer c.Close()

			got := ""
			switch c.(type) {
			case Nop:
				got = "cache.Nop"
			case *Memory:
				got = "*cache.Memory"
			case *Redis:
				got = "*cache.Redis"
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %T", tt.want, c)
			}
		})
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory(time.Minute)
	defer cache.Close()

	if got, _ := cache.GetMany(ctx, []string{"mint"}); len(got) != 0 {
		t.Fatal("Expected empty cache")
	}

	value := []byte(`{"metadata":{}}`)
	if err := cache.SetMany(ctx, map[string][]byte{"mint": value}); err != nil {
		t.Fatalf("SetMany() failed: %v", err)
	}
	value[0] = 'x'

	got, err := cache.GetMany(ctx, []string{"mint", "other"})
	if err != nil {
		t.Fatalf("GetMany() failed: %v", err)
	}
	if len(got) != 1 || string(got["mint"]) != `{"metadata":{}}` {
		t.Errorf("Expected only the stored entry, unchanged by the caller, got %q", got)
	}
}

// Expired entries are dropped without being read again
func TestMemory_EvictsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory(100 * time.Millisecond)
	defer cache.Close()

	entries := make(map[string][]byte)
	for _, key := range []string{"mintA", "mintB", "mintC"} {
		entries[key] = []byte("{}")
	}
	if err := cache.SetMany(ctx, entries); err != nil {
		t.Fatalf("SetMany() failed: %v", err)
	}
	if cache.Len() != 3 {
		t.Fatalf("Expected 3 entries, got %d", cache.Len())
	}

	deadline := time.Now().Add(2 * time.Second)
	for cache.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if cache.Len() != 0 {
		t.Errorf("Expected expired entries to be evicted, got %d entries", cache.Len())
	}

	if got, _ := cache.GetMany(ctx, []string{"mintA"}); len(got) != 0 {
		t.Error("Expected expired entry to miss")
	}
}

func TestMemory_CloseTwice(t *testing.T) {
	cache := NewMemory(time.Minute)
	if err := cache.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("second Close() failed: %v", err)
	}
}

func TestRedis(t *testing.T) {
	server := miniredis.RunT(t)
	ctx := context.Background()

	cache := NewRedis(RedisOptions{Addr: server.Addr(), TTL: time.Minute}, testLogger())
	defer cache.Close()

	if got, err := cache.GetMany(ctx, []string{"mint"}); err != nil || len(got) != 0 {
		t.Fatalf("Expected miss, got %q err=%v", got, err)
	}

	err := cache.SetMany(ctx, map[string][]byte{
		"mintA": []byte(`{"trade_data":{}}`),
		"mintB": []byte(`{"metadata":{}}`),
	})
	if err != nil {
		t.Fatalf("SetMany() failed: %v", err)
	}

	if !server.Exists(KeyPrefix + "mintA") {
		t.Errorf("Expected key %s in redis", KeyPrefix+"mintA")
	}
	if ttl := server.TTL(KeyPrefix + "mintB"); ttl != time.Minute {
		t.Errorf("Expected TTL 1m, got %v", ttl)
	}

	got, err := cache.GetMany(ctx, []string{"mintA", "missing", "mintB"})
	if err != nil {
		t.Fatalf("GetMany() failed: %v", err)
	}
	want := map[string][]byte{
		"mintA": []byte(`{"trade_data":{}}`),
		"mintB": []byte(`{"metadata":{}}`),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetMany() mismatch (-want +got):\n%s", diff)
	}

	server.FastForward(2 * time.Minute)
	if got, _ := cache.GetMany(ctx, []string{"mintA"}); len(got) != 0 {
		t.Error("Expected entry to expire")
	}
}

// An unreachable redis fails fast instead of eating the invocation budget
func TestRedis_Unavailable(t *testing.T) {
	server := miniredis.RunT(t)
	cache := NewRedis(RedisOptions{Addr: server.Addr(), TTL: time.Minute}, testLogger())
	defer cache.Close()

	server.Close()

	start := time.Now()
	if _, err := cache.GetMany(context.Background(), []string{"mintA", "mintB"}); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("Expected ErrCacheUnavailable, got %v", err)
	}
	err := cache.SetMany(context.Background(), map[string][]byte{"mint": []byte("{}")})
	if !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("Expected ErrCacheUnavailable, got %v", err)
	}

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected cache failures to return quickly, took %v", elapsed)
	}
}
