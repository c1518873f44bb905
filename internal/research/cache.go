package research

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"execmind/internal/logging"
)

type cacheEntry struct {
	results   []Result
	createdAt time.Time
	expiresAt time.Time
}

// Cache is a Searcher that remembers successful searches for a TTL.
// Failures are never cached.
type Cache struct {
	next    Searcher
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
	hits    int
	misses  int
}

// NewCache wraps next. When full, the oldest entry is evicted.
func NewCache(next Searcher, maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &Cache{
		next:    next,
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*cacheEntry),
	}
}

// Search implements Searcher.
func (c *Cache) Search(ctx context.Context, query string, max int) ([]Result, error) {
	key := hashKey(strings.ToLower(strings.TrimSpace(query)), strconv.Itoa(max))

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expiresAt) {
		c.hits++
		c.mu.Unlock()
		logging.ResearchDebug("search cache hit: %q", query)
		return append([]Result(nil), e.results...), nil
	}
	c.misses++
	c.mu.Unlock()

	results, err := c.next.Search(ctx, query, max)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	now := c.now()
	c.entries[key] = &cacheEntry{
		results:   append([]Result(nil), results...),
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	}
	return results, nil
}

// Stats reports hits, misses and current size.
func (c *Cache) Stats() (hits, misses, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}

func (c *Cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.createdAt.Before(oldest) {
			oldestKey, oldest = k, e.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func hashKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
