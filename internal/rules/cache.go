package rules

import (
	"container/list"
	"sync"
)

// DefaultCacheSize is the default maximum number of entries held in a
// HashCache.
const DefaultCacheSize = 4096

type cacheEntry struct {
	hash   string
	result ScanResult
}

// HashCache is a process-local, bounded least-recently-used cache
// keyed by content hash. It is never persisted across process
// restarts — the reputation store is the durable layer.
type HashCache struct {
	mu      sync.Mutex
	maxSize int
	ll      *list.List
	index   map[string]*list.Element
}

// NewHashCache creates a HashCache bounded at maxSize entries. A
// non-positive maxSize falls back to DefaultCacheSize.
func NewHashCache(maxSize int) *HashCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &HashCache{
		maxSize: maxSize,
		ll:      list.New(),
		index:   make(map[string]*list.Element),
	}
}

// Get returns the cached result for hash, moving it to the
// most-recently-used position, and whether it was present.
func (c *HashCache) Get(hash string) (ScanResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[hash]
	if !ok {
		return ScanResult{}, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).result, true
}

// Put inserts or updates the cached result for hash, evicting the
// least-recently-used entry if the cache is over capacity.
func (c *HashCache) Put(hash string, result ScanResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[hash]; ok {
		el.Value.(*cacheEntry).result = result
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&cacheEntry{hash: hash, result: result})
	c.index[hash] = el

	for c.ll.Len() > c.maxSize {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.index, oldest.Value.(*cacheEntry).hash)
	}
}

// Len returns the current number of cached entries.
func (c *HashCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
