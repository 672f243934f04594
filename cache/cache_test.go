package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	host, port, _ := strings.Cut(mr.Addr(), ":")
	c, err := NewRedisCache(RedisConfig{Host: host, Port: port, TTL: time.Minute})
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "geocode", "Paris"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	if err := c.Set(ctx, "geocode", "Paris", []byte(`[{"id":"u09t"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := c.Get(ctx, "geocode", "  paris ")
	if !ok {
		t.Fatalf("expected hit for normalized query")
	}
	if string(got) != `[{"id":"u09t"}]` {
		t.Fatalf("unexpected payload %s", got)
	}
	if _, ok := c.Get(ctx, "airports", "Paris"); ok {
		t.Fatalf("namespaces must not share entries")
	}
}

func TestRedisCacheExpires(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	if err := c.Set(ctx, "airports", "lon", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok := c.Get(ctx, "airports", "lon"); ok {
		t.Fatalf("expected entry to expire after TTL")
	}
}

func TestNoOpCacheAlwaysMisses(t *testing.T) {
	c := NewNoOpCache()
	_ = c.Set(context.Background(), "geocode", "x", []byte("y"))
	if _, ok := c.Get(context.Background(), "geocode", "x"); ok {
		t.Fatalf("noop cache should never hit")
	}
}

func TestKeyPrefix(t *testing.T) {
	k := Key("geocode", "Paris")
	if !strings.HasPrefix(k, "suggest:geocode:") {
		t.Fatalf("unexpected key %q", k)
	}
}
