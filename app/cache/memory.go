package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultMemoryCacheSize = 128

// MemoryCache keeps fetched pages in a size-bounded in-process LRU.
// Entries share the TTL given at construction; the per-call TTL is ignored.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *MemoryCache) GetPage(_ context.Context, pageURL string) ([]byte, bool, error) {
	data, ok := c.lru.Get(PageKey(pageURL))
	return data, ok, nil
}

func (c *MemoryCache) SetPage(_ context.Context, pageURL string, data []byte, _ time.Duration) error {
	c.lru.Add(PageKey(pageURL), data)
	return nil
}

func (c *MemoryCache) Health(_ context.Context) map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"type":      "memory",
		"key_count": c.lru.Len(),
	}
}
