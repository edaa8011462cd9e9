package admin

import (
	"sync"
)

// Cache is a confirmed-identity set that saves repeated storage lookups.
// Entries are added once a user passes the access check and must be
// invalidated on ban or demotion.
type Cache struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

func NewCache(seed ...int64) *Cache {
	c := &Cache{ids: make(map[int64]struct{})}
	for _, id := range seed {
		if id != 0 {
			c.ids[id] = struct{}{}
		}
	}
	return c
}

func (c *Cache) Contains(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

func (c *Cache) Confirm(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[id] = struct{}{}
}

func (c *Cache) Invalidate(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, id)
}
