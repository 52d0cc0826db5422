// internal/cache/lru.go
//
// Small least-recently-used cache with a per-entry time-to-live.  The auth
// verifier uses it to skip signature checks for bearer tokens it has already
// accepted; size and TTL come from CACHE_MAX_ITEMS and CACHE_TTL.
//
// Notes
// -----
// • Safe for concurrent use.
// • Expired entries are dropped lazily on Get and evicted first on Add.
// • Oxford commas, two spaces after periods.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a generic least-recently-used cache.
type LRU[K comparable, V any] struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	now  func() time.Time
	ll   *list.List
	dict map[K]*list.Element
}

type entry[K comparable, V any] struct {
	key     K
	val     V
	expires time.Time
}

// New returns an LRU with the given capacity and TTL.  Panics on
// capacity < 1.  A ttl of zero disables expiry.
func New[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &LRU[K, V]{
		cap:  capacity,
		ttl:  ttl,
		now:  time.Now,
		ll:   list.New(),
		dict: make(map[K]*list.Element, capacity),
	}
}

// Get retrieves a live value and marks it MRU.
func (c *LRU[K, V]) Get(key K) (val V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, hit := c.dict[key]
	if !hit {
		return val, false
	}
	e := ele.Value.(*entry[K, V])
	if c.expired(e) {
		c.remove(ele)
		return val, false
	}
	c.ll.MoveToFront(ele)
	return e.val, true
}

// Add inserts or updates a value and restarts its TTL.
func (c *LRU[K, V]) Add(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	if ele, hit := c.dict[key]; hit {
		ele.Value = &entry[K, V]{key, val, expires}
		c.ll.MoveToFront(ele)
		return
	}
	c.dict[key] = c.ll.PushFront(&entry[K, V]{key, val, expires})

	if c.ll.Len() > c.cap {
		c.evict()
	}
}

// Len reports current size, including entries not yet found expired.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// evict drops one expired entry if any exists, otherwise the LRU tail.
func (c *LRU[K, V]) evict() {
	for ele := c.ll.Back(); ele != nil; ele = ele.Prev() {
		if c.expired(ele.Value.(*entry[K, V])) {
			c.remove(ele)
			return
		}
	}
	c.remove(c.ll.Back())
}

func (c *LRU[K, V]) expired(e *entry[K, V]) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

func (c *LRU[K, V]) remove(ele *list.Element) {
	c.ll.Remove(ele)
	delete(c.dict, ele.Value.(*entry[K, V]).key)
}
