package highlight

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Cache is a small LRU of rendered output keyed by content hash.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
	maxSize int
	// lru holds keys oldest first
	lru []string
}

// NewCache creates a cache holding at most maxSize entries
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 32
	}
	return &Cache{
		entries: make(map[string]string),
		maxSize: maxSize,
		lru:     make([]string, 0, maxSize),
	}
}

// Key hashes the rendering parameters into a cache key
func (c *Cache) Key(params ...any) string {
	h := sha256.New()
	for _, p := range params {
		fmt.Fprintf(h, "%v\x00", p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached value and marks it most recently used
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	if ok {
		c.touch(key)
	}
	return v, ok
}

// Set stores a value, evicting the least recently used entry when full
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize && len(c.lru) > 0 {
		delete(c.entries, c.lru[0])
		c.lru = c.lru[1:]
	}
	c.entries[key] = value
	c.touch(key)
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// touch must be called with the lock held.
func (c *Cache) touch(key string) {
	for i, k := range c.lru {
		if k == key {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			break
		}
	}
	c.lru = append(c.lru, key)
}
