// Package cache holds the per-owner session cache of extracted activities.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
}

// TTL is a capacity bounded map whose entries disappear after a fixed time to live.
// All entries share one TTL, so insertion order is also expiry order and a single
// FIFO list serves both eviction rules.
type TTL[V any] struct {
	ttl      time.Duration
	capacity int
	clock    func() time.Time

	mu    sync.RWMutex
	order *list.List
	items map[string]*list.Element
}

func NewTTL[V any](ttl time.Duration, capacity int, clock func() time.Time) *TTL[V] {
	if clock == nil {
		clock = time.Now
	}
	if capacity <= 0 {
		capacity = 1
	}
	return &TTL[V]{
		ttl:      ttl,
		capacity: capacity,
		clock:    clock,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Put stores value under key. Re-putting a key counts as a fresh insertion.
func (c *TTL[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}

	c.evictLocked(now)

	el := c.order.PushBack(&entry[V]{key: key, value: value, insertedAt: now})
	c.items[key] = el
}

// evictLocked drops expired entries, then the oldest ones until there is room for one more.
func (c *TTL[V]) evictLocked(now time.Time) {
	for front := c.order.Front(); front != nil; front = c.order.Front() {
		e := front.Value.(*entry[V])
		if !c.expired(e, now) && c.order.Len() < c.capacity {
			return
		}
		c.order.Remove(front)
		delete(c.items, e.key)
	}
}

// Get fails closed: an expired entry is reported absent even before it is evicted.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if c.expired(e, c.clock()) {
		return zero, false
	}
	return e.value, true
}

func (c *TTL[V]) expired(e *entry[V], now time.Time) bool {
	return now.Sub(e.insertedAt) >= c.ttl
}

// Len counts physically retained entries, expired ones included.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}
