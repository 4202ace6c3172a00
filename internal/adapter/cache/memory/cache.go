package memory

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"todoapi/internal/core/port"
)

type Cache struct {
	store *cache.Cache
}

func New(defaultTTL time.Duration) port.CacheRepository {
	return &Cache{
		store: cache.New(defaultTTL, 2*defaultTTL),
	}
}

func (mc *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	mc.store.Set(key, value, ttl)
	return nil
}

func (mc *Cache) Get(_ context.Context, key string) ([]byte, error) {
	value, found := mc.store.Get(key)

	if !found {
		return nil, port.ErrCacheMiss
	}

	return value.([]byte), nil
}

func (mc *Cache) Delete(_ context.Context, key string) error {
	mc.store.Delete(key)
	return nil
}

func (mc *Cache) DeleteByPrefix(_ context.Context, prefix string) error {
	for key := range mc.store.Items() {
		if strings.HasPrefix(key, prefix) {
			mc.store.Delete(key)
		}
	}

	return nil
}

func (mc *Cache) Close() error {
	mc.store.Flush()
	return nil
}
