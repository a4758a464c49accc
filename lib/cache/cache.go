package cache

import (
	"fmt"
	"sync"

	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Cache Type
// --------------------------------------------------------------------------

// Cache is a fixed-capacity, thread-safe map with least-recently-used
// eviction. All operations are O(1): a sentinel-headed doubly linked list
// keeps entries in recency order (head side is most recently used) and a
// plain map indexes nodes by key, with each node carrying its key back for
// the reverse direction.
//
// A single coarse mutex guards every operation. Access is serialized, which
// is acceptable because cache bookkeeping is constant-time; the backing
// store calls it fronts dominate latency by orders of magnitude.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	index    map[K]*node[K, V]
	head     *node[K, V] // sentinel, head.next is the MRU entry
	tail     *node[K, V] // sentinel, tail.prev is the LRU entry

	// stats (guarded by mu; the metrics counters are additionally exported
	// globally under the cache name)
	stats     Stats
	hits      *metrics.Counter
	misses    *metrics.Counter
	evictions *metrics.Counter
}

// node is one cache entry. It belongs to the recency list and is indexed by
// its key; every live key maps to exactly one node and vice versa.
type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// Stats is a snapshot of the cache's hit/miss/eviction counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// New creates a cache holding at most capacity entries. The name labels the
// exported metrics for this cache; caches sharing a name share counters.
// Panics if capacity is not positive, a programmer error.
func New[K comparable, V any](name string, capacity int) *Cache[K, V] {
	if capacity < 1 {
		panic(fmt.Sprintf("cache: capacity must be positive, got %d", capacity))
	}
	c := &Cache[K, V]{
		capacity:  capacity,
		index:     make(map[K]*node[K, V], capacity),
		head:      &node[K, V]{},
		tail:      &node[K, V]{},
		hits:      metrics.GetOrCreateCounter(fmt.Sprintf(`cache_hits_total{cache=%q}`, name)),
		misses:    metrics.GetOrCreateCounter(fmt.Sprintf(`cache_misses_total{cache=%q}`, name)),
		evictions: metrics.GetOrCreateCounter(fmt.Sprintf(`cache_evictions_total{cache=%q}`, name)),
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

// Get returns the cached value for key and promotes the entry to most
// recently used. The boolean reports whether the key was cached.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[key]
	if !ok {
		c.stats.Misses++
		c.misses.Inc()
		var zero V
		return zero, false
	}
	c.unlink(n)
	c.pushFront(n)
	c.stats.Hits++
	c.hits.Inc()
	return n.value, true
}

// Put inserts or replaces the value for key and places the entry at the most
// recently used end. When inserting at capacity, the least-recently-used
// entry is evicted first. Returns the previous value, if any.
func (c *Cache[K, V]) Put(key K, value V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.index[key]; ok {
		prev := n.value
		n.value = value
		c.unlink(n)
		c.pushFront(n)
		return prev, true
	}

	if len(c.index) >= c.capacity {
		lru := c.tail.prev
		c.unlink(lru)
		delete(c.index, lru.key)
		c.stats.Evictions++
		c.evictions.Inc()
	}

	n := &node[K, V]{key: key, value: value}
	c.index[key] = n
	c.pushFront(n)
	var zero V
	return zero, false
}

// Update replaces the value for key in place, without changing the entry's
// position in the recency order, so that a client's explicit write to
// backing storage does not disturb unrelated cache ordering. Absent keys are
// not inserted. Returns the previous value, if any.
func (c *Cache[K, V]) Update(key K, value V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	prev := n.value
	n.value = value
	return prev, true
}

// Remove drops the entry for key. Returns the removed value, if any.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.unlink(n)
	delete(c.index, key)
	return n.value, true
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = make(map[K]*node[K, V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Cap returns the capacity.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// Stats returns a snapshot of this instance's counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// --------------------------------------------------------------------------
// Recency List
// --------------------------------------------------------------------------

func (c *Cache[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

func (c *Cache[K, V]) pushFront(n *node[K, V]) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}
