package container

import (
	"context"
	"fmt"

	"github.com/hupe1980/restock/core"
)

// Chest is a slot based container living on a Network. All reads and writes
// go through the network mutex.
type Chest struct {
	name  string
	size  int
	slots map[int]core.ItemStack
	net   *Network
}

var (
	_ core.Container     = (*Chest)(nil)
	_ core.VerifiedMover = (*Chest)(nil)
)

// Name implements core.Container.
func (c *Chest) Name() string { return c.name }

// List implements core.Container. The returned map is a copy.
func (c *Chest) List(_ context.Context) (map[int]core.ItemStack, error) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if !c.net.presentLocked(c.name) {
		return nil, fmt.Errorf("%s: %w", c.name, ErrNotAttached)
	}
	out := make(map[int]core.ItemStack, len(c.slots))
	for slot, stack := range c.slots {
		out[slot] = stack
	}
	return out, nil
}

// Size implements core.Container.
func (c *Chest) Size(_ context.Context) (int, error) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if !c.net.presentLocked(c.name) {
		return 0, fmt.Errorf("%s: %w", c.name, ErrNotAttached)
	}
	return c.size, nil
}

// Peek implements core.Container.
func (c *Chest) Peek(_ context.Context, slot int) (core.ItemStack, bool, error) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if !c.net.presentLocked(c.name) {
		return core.ItemStack{}, false, fmt.Errorf("%s: %w", c.name, ErrNotAttached)
	}
	stack, ok := c.slots[slot]
	if !ok || stack.IsEmpty() {
		return core.ItemStack{}, false, nil
	}
	return stack, true, nil
}

// Move implements core.Container.
func (c *Chest) Move(_ context.Context, target string, slot, amount int) (int, error) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return c.net.moveLocked(c, target, slot, amount)
}

// MoveIfMatch implements core.VerifiedMover: the slot check and the move
// happen under one lock acquisition.
func (c *Chest) MoveIfMatch(_ context.Context, target string, slot int, expected string, amount int) (core.ItemStack, int, error) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if !c.net.presentLocked(c.name) {
		return core.ItemStack{}, 0, fmt.Errorf("%s: %w", c.name, ErrNotAttached)
	}
	stack, ok := c.slots[slot]
	if !ok || stack.IsEmpty() || stack.Item != expected {
		return stack, 0, nil
	}
	moved, err := c.net.moveLocked(c, target, slot, amount)
	return stack, moved, err
}

// Put places a stack directly into a slot, replacing whatever was there. It
// is how simulations and tests (the "external actor") mutate a chest.
func (c *Chest) Put(slot int, item string, count int) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if item == "" || count <= 0 {
		delete(c.slots, slot)
		return
	}
	c.slots[slot] = core.ItemStack{Item: item, Count: count}
}

// Insert adds count units of item wherever they fit and returns how many
// units did not fit.
func (c *Chest) Insert(item string, count int) int {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	for s := 1; s <= c.size && count > 0; s++ {
		cur, ok := c.slots[s]
		if ok && cur.Item == item && cur.Count < c.net.stackLimit {
			add := min(count, c.net.stackLimit-cur.Count)
			cur.Count += add
			c.slots[s] = cur
			count -= add
		}
	}
	for s := 1; s <= c.size && count > 0; s++ {
		if _, ok := c.slots[s]; !ok {
			add := min(count, c.net.stackLimit)
			c.slots[s] = core.ItemStack{Item: item, Count: add}
			count -= add
		}
	}
	return count
}

// Take removes up to count units of item and returns how many were removed.
func (c *Chest) Take(item string, count int) int {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	taken := 0
	for s := 1; s <= c.size && taken < count; s++ {
		cur, ok := c.slots[s]
		if !ok || cur.Item != item {
			continue
		}
		n := min(count-taken, cur.Count)
		cur.Count -= n
		taken += n
		if cur.Count <= 0 {
			delete(c.slots, s)
		} else {
			c.slots[s] = cur
		}
	}
	return taken
}

// Clear empties every slot.
func (c *Chest) Clear() {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	c.slots = make(map[int]core.ItemStack)
}

// Count returns the total units of item held.
func (c *Chest) Count(item string) int {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	total := 0
	for _, st := range c.slots {
		if st.Item == item {
			total += st.Count
		}
	}
	return total
}
