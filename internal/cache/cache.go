// Package cache is an in-process byte cache with per-entry TTL, backed by
// ristretto.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultMaxCost bounds the cache at 64 MiB of values.
const DefaultMaxCost int64 = 64 << 20

// Cache wraps a ristretto cache keyed by string.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a cache holding at most maxCostBytes of values.
func New(maxCostBytes int64) (*Cache, error) {
	if maxCostBytes <= 0 {
		maxCostBytes = DefaultMaxCost
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache{c: c}, nil
}

// Get returns the value stored under key.
func (c *Cache) Get(key string) ([]byte, bool) {
	return c.c.Get(key)
}

// Set stores value under key for ttl. A zero ttl keeps the entry until it is
// evicted. Set waits for the write to land so a following Get observes it.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) bool {
	ok := c.c.SetWithTTL(key, value, int64(len(value))+int64(len(key)), ttl)
	c.c.Wait()
	return ok
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.c.Del(key)
}

// Close releases the cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}

// GetJSON decodes the value under key into v.
func (c *Cache) GetJSON(key string, v any) (bool, error) {
	data, ok := c.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func (c *Cache) SetJSON(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if !c.Set(key, data, ttl) {
		return fmt.Errorf("cache: %s rejected", key)
	}
	return nil
}
