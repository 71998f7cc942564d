package basemap

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// Cache is a concurrent-safe LRU cache of raster tiles with TTL expiry.
type Cache struct {
	mu         sync.Mutex
	entries    map[Coord]*list.Element
	lru        *list.List // front = most recently used
	maxEntries int
	ttl        time.Duration
	hits       atomic.Int64
	misses     atomic.Int64

	nowFunc func() time.Time
}

type cacheEntry struct {
	coord    Coord
	tile     Tile
	storedAt time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewCache creates a Cache holding at most maxEntries tiles for ttl each.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cache{
		entries:    make(map[Coord]*list.Element),
		lru:        list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		nowFunc:    time.Now,
	}
}

// Get returns a cached tile. Expired entries count as misses and are dropped.
func (c *Cache) Get(k Coord) (Tile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[k]
	if !ok {
		c.misses.Add(1)
		return Tile{}, false
	}
	e := el.Value.(*cacheEntry)
	if c.ttl > 0 && c.nowFunc().Sub(e.storedAt) > c.ttl {
		c.lru.Remove(el)
		delete(c.entries, k)
		c.misses.Add(1)
		return Tile{}, false
	}
	c.lru.MoveToFront(el)
	c.hits.Add(1)
	return e.tile, true
}

// Put stores a tile, evicting the least recently used entry when full.
func (c *Cache) Put(k Coord, t Tile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[k]; ok {
		el.Value = &cacheEntry{coord: k, tile: t, storedAt: c.nowFunc()}
		c.lru.MoveToFront(el)
		return
	}

	for c.lru.Len() >= c.maxEntries {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).coord)
	}
	c.entries[k] = c.lru.PushFront(&cacheEntry{coord: k, tile: t, storedAt: c.nowFunc()})
}

// Stats returns cache performance statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	entries := c.lru.Len()
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return CacheStats{
		Entries:    entries,
		MaxEntries: c.maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}
