package inventory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hupe1980/restock/core"
)

// Cache keeps recent snapshots keyed by container name so that sub-systems
// sharing one tick do not rescan the same container. Entries are cloned on
// the way in and out, so callers may mutate what they receive.
type Cache struct {
	lru *expirable.LRU[string, core.Inventory]
}

// NewCache creates a cache holding at most size snapshots for ttl each. The
// driver sets ttl to its tick interval.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 16
	}
	return &Cache{lru: expirable.NewLRU[string, core.Inventory](size, nil, ttl)}
}

// Get returns a clone of the cached snapshot for name.
func (c *Cache) Get(name string) (core.Inventory, bool) {
	inv, ok := c.lru.Get(name)
	if !ok {
		return nil, false
	}
	return inv.Clone(), true
}

// Put stores a clone of inv under name.
func (c *Cache) Put(name string, inv core.Inventory) {
	c.lru.Add(name, inv.Clone())
}

// Invalidate drops the snapshot for name.
func (c *Cache) Invalidate(name string) {
	c.lru.Remove(name)
}

// Purge drops every snapshot.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Scan returns the cached snapshot of container if present, otherwise scans
// it and caches the result. The boolean reports a cache hit.
func (c *Cache) Scan(ctx context.Context, container core.Container) (core.Inventory, bool, error) {
	if inv, ok := c.Get(container.Name()); ok {
		return inv, true, nil
	}
	inv, err := Scan(ctx, container)
	if err != nil {
		return nil, false, err
	}
	c.Put(container.Name(), inv)
	return inv, false, nil
}
