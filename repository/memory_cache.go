package repository

import (
	"context"
	"sync"
	"time"
)

const memoryCacheSweep = time.Minute

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process CacheRepository with per-entry expiry.
type MemoryCache struct {
	mu    sync.RWMutex
	data  map[string]memoryEntry
	now   func() time.Time
	done  chan struct{}
	close sync.Once
}

// NewMemoryCache creates a cache and starts its expiry sweeper. Call Stop to
// release it.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]memoryEntry),
		now:  time.Now,
		done: make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

// Set stores value. A zero ttl keeps the entry until Stop.
func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.data[key] = entry
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Stop ends the sweeper goroutine.
func (c *MemoryCache) Stop() {
	c.close.Do(func() { close(c.done) })
}

func (c *MemoryCache) sweepLoop() {
	ticker := time.NewTicker(memoryCacheSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

func (c *MemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(c.data, key)
		}
	}
}
