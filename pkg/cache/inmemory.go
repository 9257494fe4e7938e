package cache

import (
	"sync"
	"time"
)

type (
	InMemory[V any] struct {
		storage map[string]V
		expires map[string]time.Time
		now     func() time.Time

		mx sync.RWMutex
	}
)

func NewInMemory[V any]() *InMemory[V] {
	return &InMemory[V]{
		storage: make(map[string]V),
		expires: make(map[string]time.Time),
		now:     time.Now,

		mx: sync.RWMutex{},
	}
}

func (c *InMemory[V]) Get(key string) (V, bool) {
	c.mx.RLock()
	defer c.mx.RUnlock()

	v, ok := c.storage[key]
	if !ok || !c.now().Before(c.expires[key]) {
		var zero V
		return zero, false
	}
	return v, true
}

// Set stores value until ttl passes. Expired entries are dropped on write.
func (c *InMemory[V]) Set(key string, value V, ttl time.Duration) {
	c.mx.Lock()
	defer c.mx.Unlock()

	now := c.now()
	for k, exp := range c.expires {
		if !now.Before(exp) {
			delete(c.storage, k)
			delete(c.expires, k)
		}
	}

	c.storage[key] = value
	c.expires[key] = now.Add(ttl)
}

func (c *InMemory[V]) Delete(key string) {
	c.mx.Lock()
	defer c.mx.Unlock()
	delete(c.storage, key)
	delete(c.expires, key)
}
