package store

import (
	"container/list"
	"sync"

	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
)

// seriesKey identifies a cached selection: one feature at one store version.
type seriesKey struct {
	version uint64
	feature string
}

type selection struct {
	view  domain.SeriesView
	diags []domain.Diagnostic
}

type cacheEntry struct {
	key seriesKey
	sel selection
}

// seriesCache is a bounded LRU of series selections scoped to store versions.
// Entries older than the floor set by dropBefore are never served or stored.
type seriesCache struct {
	mu         sync.Mutex
	maxEntries int
	floor      uint64
	order      *list.List // front is most recently used
	entries    map[seriesKey]*list.Element
}

func newSeriesCache(maxEntries int) *seriesCache {
	return &seriesCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[seriesKey]*list.Element),
	}
}

func (c *seriesCache) get(key seriesKey) (selection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return selection{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).sel, true
}

// put stores sel under key. A selection built from a version that has
// already been superseded is dropped: a reader can finish selecting after a
// load has moved the floor past the version it read.
func (c *seriesCache) put(key seriesKey, sel selection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key.version < c.floor {
		return
	}
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).sel = sel
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, sel: sel})
	for c.order.Len() > c.maxEntries {
		c.removeElement(c.order.Back())
	}
}

// dropBefore raises the floor to version and discards every entry built from
// an older version. Entries already built for version or later are kept.
// It returns the number of entries discarded.
func (c *seriesCache) dropBefore(version uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version <= c.floor {
		return 0
	}
	c.floor = version

	dropped := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*cacheEntry).key.version < version {
			c.removeElement(el)
			dropped++
		}
		el = next
	}
	return dropped
}

func (c *seriesCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *seriesCache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).key)
}
