package cache

import (
	"sync"
	"time"

	"github.com/dyike/cortexmem/internal/memory"
)

// KeyPrefix namespaces memory snapshots from other cached resources.
const KeyPrefix = "memory-"

// Key returns the cache key for a trader, or "" when there is nothing to fetch.
func Key(traderID string) string {
	if traderID == "" {
		return ""
	}
	return KeyPrefix + traderID
}

// SnapshotCache keeps the latest snapshot per key. Entries never expire on
// their own: each successful poll replaces the entry and Invalidate drops it.
type SnapshotCache struct {
	entries map[string]*CachedSnapshot
	mu      sync.RWMutex
}

type CachedSnapshot struct {
	Snapshot  *memory.Snapshot
	Key       string
	FetchedAt time.Time
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{entries: make(map[string]*CachedSnapshot)}
}

func (c *SnapshotCache) Get(key string) (*CachedSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.entries[key]
	return cached, ok
}

func (c *SnapshotCache) Set(key string, snap *memory.Snapshot, fetchedAt time.Time) *CachedSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &CachedSnapshot{Snapshot: snap, Key: key, FetchedAt: fetchedAt}
	c.entries[key] = entry
	return entry
}

func (c *SnapshotCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stats reports cache occupancy for diagnostics.
func (c *SnapshotCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return map[string]interface{}{
		"size": len(c.entries),
		"keys": keys,
	}
}
