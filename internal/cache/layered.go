package cache

import (
	"context"
	"time"
)

// LayeredCache checks a fast local layer before a shared one and promotes hits.
type LayeredCache struct {
	local  Cache
	shared Cache
}

// NewLayeredCache combines local and shared. Either may be nil.
func NewLayeredCache(local, shared Cache) *LayeredCache {
	return &LayeredCache{local: local, shared: shared}
}

// Get returns the value from the first layer that has it.
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.local != nil {
		if val, ok := c.local.Get(ctx, key); ok {
			return val, true
		}
	}
	if c.shared != nil {
		if val, ok := c.shared.Get(ctx, key); ok {
			if c.local != nil {
				_ = c.local.Set(ctx, key, val, 0)
			}
			return val, true
		}
	}
	return nil, false
}

// Set stores value in every layer.
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.local != nil {
		if err := c.local.Set(ctx, key, value, ttl); err != nil {
			return err
		}
	}
	if c.shared != nil {
		if err := c.shared.Set(ctx, key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes key from every layer.
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	if c.local != nil {
		_ = c.local.Delete(ctx, key)
	}
	if c.shared != nil {
		return c.shared.Delete(ctx, key)
	}
	return nil
}
