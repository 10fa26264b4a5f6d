package testutil

import "github.com/hupe1980/restock/core"

// InventoryBuilder provides a fluent helper for constructing snapshots.
// Example:
//
//	inv := NewInventoryBuilder().Stack("minecraft:sand", 1, 64).Build()
//
// Slot numbers are assigned automatically by Stacks.
type InventoryBuilder struct {
	inv      core.Inventory
	nextSlot int
}

// NewInventoryBuilder creates an empty builder.
func NewInventoryBuilder() *InventoryBuilder {
	return &InventoryBuilder{inv: core.Inventory{}, nextSlot: 1}
}

// Stack adds count units of item at slot (chainable).
func (b *InventoryBuilder) Stack(item string, slot, count int) *InventoryBuilder {
	b.inv.Add(item, slot, count)
	if slot >= b.nextSlot {
		b.nextSlot = slot + 1
	}
	return b
}

// Stacks spreads total units of item over fresh slots of at most stackSize
// each (chainable).
func (b *InventoryBuilder) Stacks(item string, total, stackSize int) *InventoryBuilder {
	for total > 0 {
		n := min(total, stackSize)
		b.inv.Add(item, b.nextSlot, n)
		b.nextSlot++
		total -= n
	}
	return b
}

// Build returns a copy of the accumulated snapshot.
func (b *InventoryBuilder) Build() core.Inventory { return b.inv.Clone() }
