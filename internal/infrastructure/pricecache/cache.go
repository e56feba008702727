package pricecache

import (
	"github.com/patrickmn/go-cache"

	"wallet_sync/internal/domain/entity"
)

const nativePriceKey = "native_price"

// Cache holds the latest native price entry of the process.
// Items never expire inside go-cache; readers judge freshness with entity.PriceCacheEntry.IsValid.
type Cache struct {
	store *cache.Cache
}

func New() *Cache {
	return &Cache{store: cache.New(cache.NoExpiration, 0)}
}

// Read returns the last written entry, if any.
func (c *Cache) Read() (entity.PriceCacheEntry, bool) {
	item, found := c.store.Get(nativePriceKey)
	if !found {
		return entity.PriceCacheEntry{}, false
	}
	entry, ok := item.(entity.PriceCacheEntry)
	return entry, ok
}

// Write replaces the entry as a whole. Last write wins.
func (c *Cache) Write(entry entity.PriceCacheEntry) {
	c.store.Set(nativePriceKey, entry, cache.NoExpiration)
}
