package cache

import (
	"context"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local TTL cache for single-instance deployments.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, crud.ErrCacheMiss
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, crud.ErrCacheMiss
	}
	return data, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}
	return nil
}
