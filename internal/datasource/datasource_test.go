package datasource

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("value1"), time.Second); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	v, ok, err := c.Get(ctx, "key1")
	if err != nil || !ok {
		t.Fatal("expected cache hit")
	}
	if string(v) != "value1" {
		t.Fatalf("got %s, want value1", v)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	_, ok, err := NewMemoryCache().Get(context.Background(), "nonexistent")
	if ok || err != nil {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	_ = c.Set(ctx, "key", []byte("val"), time.Millisecond)

	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidate(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	_ = c.Set(ctx, "key", []byte("val"), time.Hour)
	c.Invalidate("key")
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Fatal("expected cache miss after invalidation")
	}
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	_ = c.Set(ctx, "expired", []byte("val"), time.Millisecond)
	_ = c.Set(ctx, "fresh", []byte("val2"), time.Hour)
	time.Sleep(5 * time.Millisecond)
	c.Cleanup()

	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after cleanup, got %d", c.Len())
	}
	if _, ok, _ := c.Get(ctx, "fresh"); !ok {
		t.Fatal("expected fresh entry to survive cleanup")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" || testing.Short() {
		t.Skip("set REDIS_ADDR to run redis cache tests")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	key := "test:" + time.Now().Format(time.RFC3339Nano)
	if _, ok, err := c.Get(ctx, key); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, []byte("bars"), time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	v, ok, err := c.Get(ctx, key)
	if err != nil || !ok || string(v) != "bars" {
		t.Fatalf("unexpected Get() result %q %v %v", v, ok, err)
	}
}

func TestErrHTTPError(t *testing.T) {
	e := &ErrHTTP{StatusCode: 404, Status: "404 Not Found", Body: "page not found"}
	msg := e.Error()
	if msg != "HTTP 404 404 Not Found: page not found" {
		t.Fatalf("unexpected error message: %s", msg)
	}
}
