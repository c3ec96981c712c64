package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("evidence", "abc", ".jpg")
	b := Key("evidence", "abc", ".jpg")
	c := Key("evidence", "abc", ".png")
	if a != b {
		t.Error("Key should be deterministic")
	}
	if a == c {
		t.Error("different parts should give different keys")
	}
	if !strings.HasPrefix(a, "claimsat:v1:evidence:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
	if Key("x", "ab", "c") == Key("x", "a", "bc") {
		t.Error("part boundaries should matter")
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("empty cache should miss")
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	_ = c.Delete(ctx, "k")
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("deleted key should miss")
	}
}

func TestMemoryCache_expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set(ctx, "short", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(ctx, "short"); ok {
		t.Error("expired entry should miss")
	}
}

func TestLayeredCache_promotesSharedHits(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache(time.Minute, time.Minute)
	shared := NewMemoryCache(time.Minute, time.Minute)
	_ = shared.Set(ctx, "k", []byte("from-shared"), 0)

	lc := NewLayeredCache(local, shared)
	got, ok := lc.Get(ctx, "k")
	if !ok || string(got) != "from-shared" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if v, ok := local.Get(ctx, "k"); !ok || string(v) != "from-shared" {
		t.Error("shared hit should be promoted to local layer")
	}

	_ = lc.Set(ctx, "n", []byte("both"), 0)
	if _, ok := shared.Get(ctx, "n"); !ok {
		t.Error("Set should write the shared layer")
	}
	_ = lc.Delete(ctx, "n")
	if _, ok := local.Get(ctx, "n"); ok {
		t.Error("Delete should clear the local layer")
	}
}

func TestLayeredCache_nilLayers(t *testing.T) {
	ctx := context.Background()
	lc := NewLayeredCache(nil, nil)
	if err := lc.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := lc.Get(ctx, "k"); ok {
		t.Error("cache with no layers should always miss")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("CLAIMSAT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CLAIMSAT_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	key := Key("test", t.Name())
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if got, ok := c.Get(ctx, key); !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, ok)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, key); ok {
		t.Error("deleted key should miss")
	}
}
