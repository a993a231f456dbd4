// Package cache holds decoded images under a byte-weight budget with
// least-recently-used eviction. Entries are keyed by filesystem path and
// weighted by their decoded pixel footprint, so one panorama counts for
// more than a hundred thumbnails.
package cache

import (
	"container/list"
	"errors"
	"sync"
	"sync/atomic"

	"gitlab.com/tinyland/lab/loupe/pkg/decode"
)

// ErrEntryTooLarge is returned by Insert when the image cannot fit in the
// cache even after evicting everything evictable. The image itself is
// still usable by the caller; it just will not be retained.
var ErrEntryTooLarge = errors.New("image exceeds cache capacity")

// Entry is a diagnostics snapshot of one cached image.
type Entry struct {
	Path   string
	Weight int64
}

// Stats reports hit/miss/eviction counters for observability.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

type cacheEntry struct {
	path   string
	img    *decode.Image
	weight int64
}

// Cache is a byte-weighted LRU over container/list: the front of the
// order list is the most recently used entry, the back the next eviction
// victim. All operations are O(1) except the diagnostics snapshot.
type Cache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List
	capacity int64
	used     int64
	pinned   string

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache with the given capacity in bytes of decoded pixel
// data. A non-positive capacity falls back to 1 GiB.
func New(capacity int64) *Cache {
	if capacity <= 0 {
		capacity = 1 << 30
	}
	return &Cache{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
	}
}

// Get returns the cached image for path and marks it most recently used.
// The returned pointer is the shared instance; callers must treat it as
// immutable.
func (c *Cache) Get(path string) (*decode.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[path]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.order.MoveToFront(elem)
	c.hits.Add(1)
	return elem.Value.(*cacheEntry).img, true
}

// Insert stores img under path, evicting least-recently-used entries
// until it fits. The pinned path is never evicted. Insert fails with
// ErrEntryTooLarge when the image cannot fit even with every other
// evictable entry gone; the cache is left no larger than it was.
func (c *Cache) Insert(path string, img *decode.Image) error {
	weight := img.SizeInMemory()

	c.mu.Lock()
	defer c.mu.Unlock()

	if weight > c.capacity {
		return ErrEntryTooLarge
	}

	if elem, ok := c.items[path]; ok {
		entry := elem.Value.(*cacheEntry)
		c.used += weight - entry.weight
		entry.img = img
		entry.weight = weight
		c.order.MoveToFront(elem)
		if !c.evictOverLocked() {
			c.removeLocked(elem)
			return ErrEntryTooLarge
		}
		return nil
	}

	if !c.makeRoomLocked(weight) {
		return ErrEntryTooLarge
	}

	elem := c.order.PushFront(&cacheEntry{path: path, img: img, weight: weight})
	c.items[path] = elem
	c.used += weight
	return nil
}

// Pin marks path as the currently displayed entry; eviction skips it.
// An empty path clears the pin.
func (c *Cache) Pin(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinned = path
}

// Remove drops path from the cache if present. Shared handles to the
// image stay valid; only the index entry goes away.
func (c *Cache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[path]; ok {
		c.removeLocked(elem)
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.used = 0
}

// TotalWeight returns the summed weight of all cached entries in bytes.
func (c *Cache) TotalWeight() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Capacity returns the configured byte budget.
func (c *Cache) Capacity() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// SetCapacity adjusts the byte budget at runtime. Shrinking below the
// current usage evicts immediately, sparing the pinned entry.
func (c *Cache) SetCapacity(capacity int64) {
	if capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	c.evictOverLocked()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Entries returns a snapshot of the cache in recency order, most recently
// used first. Intended for diagnostics.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*cacheEntry)
		entries = append(entries, Entry{Path: e.path, Weight: e.weight})
	}
	return entries
}

// Stats returns the running hit/miss/eviction counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// makeRoomLocked evicts from the back until extra bytes fit under the
// capacity, skipping the pinned entry. Reports whether the room could be
// made.
func (c *Cache) makeRoomLocked(extra int64) bool {
	for c.used+extra > c.capacity {
		if !c.evictOneLocked() {
			return false
		}
	}
	return true
}

// evictOverLocked evicts until usage is back under capacity. Reports
// whether it succeeded; it can fail only when the pinned entry alone is
// over budget.
func (c *Cache) evictOverLocked() bool {
	for c.used > c.capacity {
		if !c.evictOneLocked() {
			return false
		}
	}
	return true
}

// evictOneLocked removes the least recently used evictable entry.
func (c *Cache) evictOneLocked() bool {
	for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
		if elem.Value.(*cacheEntry).path == c.pinned {
			continue
		}
		c.removeLocked(elem)
		c.evictions.Add(1)
		return true
	}
	return false
}

func (c *Cache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.order.Remove(elem)
	delete(c.items, entry.path)
	c.used -= entry.weight
}
