// Package render turns decoded frames into terminal escape strings, with
// protocol dispatch and an LRU over the rendered output. Rendering a frame
// is expensive (resize + encode); revisiting the same frame at the same
// size is a string lookup.
package render

import (
	"container/list"
	"fmt"
	"sync"
	"sync/atomic"
)

// Key identifies one rendered output: which frame of which file, at what
// cell size, under which protocol. The viewer knows image identity by
// path, so no content hashing is needed; a deleted or replaced file is
// handled by InvalidatePath.
type Key struct {
	Path     string
	Frame    int
	Width    int
	Height   int
	Protocol string
}

// String returns a human-readable key for debugging.
func (k Key) String() string {
	return fmt.Sprintf("%s#%d:%dx%d:%s", k.Path, k.Frame, k.Width, k.Height, k.Protocol)
}

// CacheStats reports hit/miss counts for observability.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
	SizeBytes int64
}

type cacheEntry struct {
	key      Key
	rendered string
}

// Cache is a thread-safe LRU for rendered escape strings, bounded by the
// summed string length in bytes.
type Cache struct {
	mu        sync.Mutex
	items     map[Key]*list.Element
	order     *list.List // front = most recent, back = least recent
	maxBytes  int64
	usedBytes int64

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewCache creates a cache bounded to maxBytes of rendered output. A
// non-positive bound gets a 32 MiB default.
func NewCache(maxBytes int64) *Cache {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	return &Cache{
		items:    make(map[Key]*list.Element),
		order:    list.New(),
		maxBytes: maxBytes,
	}
}

// Get retrieves a cached rendered string and promotes it.
func (c *Cache) Get(key Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.order.MoveToFront(elem)
	c.hits.Add(1)
	return elem.Value.(*cacheEntry).rendered, true
}

// Put stores a rendered string, evicting least recently used entries to
// stay under the byte bound.
func (c *Cache) Put(key Key, rendered string) {
	size := int64(len(rendered))

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		old := elem.Value.(*cacheEntry)
		c.usedBytes += size - int64(len(old.rendered))
		old.rendered = rendered
		c.order.MoveToFront(elem)
		c.evictOverLocked()
		return
	}

	for c.usedBytes+size > c.maxBytes && c.order.Len() > 0 {
		c.evictBackLocked()
	}

	elem := c.order.PushFront(&cacheEntry{key: key, rendered: rendered})
	c.items[key] = elem
	c.usedBytes += size
}

// InvalidatePath drops every rendered size and frame of one file. Called
// after a delete or when the file changed on disk.
func (c *Cache) InvalidatePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next *list.Element
	for elem := c.order.Front(); elem != nil; elem = next {
		next = elem.Next()
		entry := elem.Value.(*cacheEntry)
		if entry.key.Path == path {
			c.removeLocked(elem)
		}
	}
}

// Invalidate clears all cache entries.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[Key]*list.Element)
	c.order.Init()
	c.usedBytes = 0
}

// Stats returns current cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.order.Len(),
		SizeBytes: c.usedBytes,
	}
}

func (c *Cache) evictOverLocked() {
	for c.usedBytes > c.maxBytes && c.order.Len() > 0 {
		c.evictBackLocked()
	}
}

func (c *Cache) evictBackLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.removeLocked(back)
	c.evictions.Add(1)
}

func (c *Cache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.order.Remove(elem)
	delete(c.items, entry.key)
	c.usedBytes -= int64(len(entry.rendered))
}
