package cache

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// BigCache is the in-process L1 tier. It stores raw bytes; callers own
// serialization so the cache itself allocates nothing per entry.
type BigCache struct {
	cache *bigcache.BigCache
}

// NewBigCache creates a cache capped at capacityMB whose entries live
// for roughly ttl (eviction runs once per second).
func NewBigCache(capacityMB int, ttl time.Duration) (*BigCache, error) {
	config := bigcache.DefaultConfig(ttl)
	config.Shards = 64
	config.HardMaxCacheSize = capacityMB
	config.MaxEntrySize = 512 * 1024
	config.Verbose = false

	c, err := bigcache.New(context.Background(), config)
	if err != nil {
		return nil, err
	}
	return &BigCache{cache: c}, nil
}

func (c *BigCache) Get(key string) ([]byte, bool) {
	data, err := c.cache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *BigCache) Set(key string, value []byte) error {
	return c.cache.Set(key, value)
}

// Remove deletes key; a missing key is not an error.
func (c *BigCache) Remove(key string) error {
	err := c.cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (c *BigCache) Flush() error {
	return c.cache.Reset()
}

func (c *BigCache) Close() error {
	return c.cache.Close()
}
