// Package classify assigns best-effort categories to transactions using an
// external chat-completion provider, with a bounded TTL cache in front.
package classify

import (
	"container/list"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache defaults.
const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = 24 * time.Hour
)

// Fingerprint builds the cache key for a transaction. Functionally identical
// transactions observed at different times share an entry.
func Fingerprint(description, merchant string, amount float64, txType string) string {
	return strings.Join([]string{
		description,
		merchant,
		fmt.Sprintf("%.2f", amount),
		strings.ToLower(txType),
	}, "|")
}

type cacheEntry struct {
	key       string
	value     string
	expiresAt time.Time
}

// Cache is a bounded, TTL-based category cache. A successful Get refreshes
// recency; Set evicts the least-recently-touched entry once capacity is
// exceeded. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	order *list.List // front = most recently touched
	items map[string]*list.Element
}

// NewCache creates a cache holding at most maxSize entries, each visible for
// ttl after its last Set.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		order:   list.New(),
		items:   make(map[string]*list.Element),
	}
}

// Get returns the cached category for key. Expired entries are evicted and
// reported absent; a hit moves the entry to the front of the recency order.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return "", false
	}

	entry := elem.Value.(*cacheEntry)
	if !c.now().Before(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.items, key)
		return "", false
	}

	c.order.MoveToFront(elem)
	return entry.value, true
}

// Set inserts or overwrites the entry for key, evicting the least-recently
// touched entry when the cache grows past capacity.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&cacheEntry{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = elem

	for len(c.items) > c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// Len reports the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
