// internal/cache/lru.go
//
// Tagged LRU cache shared by the route dispatcher and the synchronizer.
//
// Context
// -------
// Every entry lives under a tag (a namespace such as "routing").  Writers
// that change the data behind a namespace call Invalidate(tag), which drops
// all entries filed under it in one step.  *LRU therefore satisfies
// dbroute.Invalidator directly.
//
// Notes
// -----
// • Safe for concurrent use; one mutex guards the list and both maps.
// • Eviction is global across tags, least-recently-used first.
// • Oxford commas, two spaces after periods.

package cache

import (
	"container/list"
	"sync"

	"github.com/yanizio/dbroute/internal/metrics"
)

type entryKey struct {
	tag string
	key string
}

type pair struct {
	k   entryKey
	val any
}

// LRU is a concurrency-safe least-recently-used cache with tag namespaces.
type LRU struct {
	mu    sync.Mutex
	cap   int
	ll    *list.List
	dict  map[entryKey]*list.Element
	byTag map[string]map[entryKey]struct{}
}

// New returns an LRU with the given capacity.  Panics on cap < 1.
func New(capacity int) *LRU {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &LRU{
		cap:   capacity,
		ll:    list.New(),
		dict:  make(map[entryKey]*list.Element, capacity),
		byTag: map[string]map[entryKey]struct{}{},
	}
}

// Get retrieves a value and marks it MRU.
func (c *LRU) Get(tag, key string) (val any, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.dict[entryKey{tag, key}]; hit {
		c.ll.MoveToFront(ele)
		return ele.Value.(pair).val, true
	}
	return nil, false
}

// Add inserts or updates a value under tag.
func (c *LRU) Add(tag, key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := entryKey{tag, key}
	if ele, hit := c.dict[k]; hit {
		ele.Value = pair{k, val}
		c.ll.MoveToFront(ele)
		return
	}
	c.dict[k] = c.ll.PushFront(pair{k, val})
	set := c.byTag[tag]
	if set == nil {
		set = map[entryKey]struct{}{}
		c.byTag[tag] = set
	}
	set[k] = struct{}{}

	if c.ll.Len() > c.cap {
		c.removeElement(c.ll.Back())
	}
}

// Invalidate drops every entry filed under tag.
func (c *LRU) Invalidate(tag string) {
	c.mu.Lock()
	for k := range c.byTag[tag] {
		if ele, ok := c.dict[k]; ok {
			c.removeElement(ele)
		}
	}
	delete(c.byTag, tag)
	c.mu.Unlock()

	metrics.CacheInvalidationsTotal.WithLabelValues(tag).Inc()
}

// Len reports current size.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *LRU) removeElement(ele *list.Element) {
	k := ele.Value.(pair).k
	c.ll.Remove(ele)
	delete(c.dict, k)
	if set := c.byTag[k.tag]; set != nil {
		delete(set, k)
		if len(set) == 0 {
			delete(c.byTag, k.tag)
		}
	}
}
