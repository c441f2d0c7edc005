package cache

import (
	"fmt"
	"sync"
	"time"
)

// NewMemory returns an in-process Cache used by tests and by local
// single-node deployments where Redis is unavailable.
func NewMemory() Cache {
	return &memoryCache{
		entries: map[string]memoryEntry{},
	}
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type memoryCache struct {
	entries map[string]memoryEntry
	mutex   sync.Mutex
}

func (c *memoryCache) get(key string) (memoryEntry, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && entry.expiresAt.Before(time.Now()) {
		delete(c.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (c *memoryCache) Set(key string, value string, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

func (c *memoryCache) Get(key string) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	entry, ok := c.get(key)
	if !ok {
		return "", fmt.Errorf("failed to get key[%s]: %w", key, ErrorNotFound)
	}
	return entry.value, nil
}

func (c *memoryCache) Del(key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Increment(key string, ttl time.Duration) (int64, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	entry, ok := c.get(key)
	count := int64(1)
	expiresAt := time.Now().Add(ttl)
	if ok {
		var current int64
		fmt.Sscanf(entry.value, "%d", &current)
		count = current + 1
		expiresAt = entry.expiresAt
	}
	c.entries[key] = memoryEntry{
		value:     fmt.Sprintf("%d", count),
		expiresAt: expiresAt,
	}
	return count, nil
}
