// Package inventory builds core.Inventory snapshots from live containers and
// answers the occupancy questions the scanners and the chain engine ask.
package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/hupe1980/restock/core"
)

// Scan reads every occupied slot of c and groups the stacks by item identity.
// Slots with a missing identity or a non-positive count are skipped. A failed
// read, or a read returning no data structure at all, yields ErrScanFailed;
// an empty container is a successful empty snapshot.
func Scan(ctx context.Context, c core.Container) (core.Inventory, error) {
	slots, err := c.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrScanFailed, c.Name(), err)
	}
	if slots == nil {
		return nil, fmt.Errorf("%w: %s: no data", core.ErrScanFailed, c.Name())
	}

	indices := make([]int, 0, len(slots))
	for slot := range slots {
		indices = append(indices, slot)
	}
	sort.Ints(indices)

	inv := core.Inventory{}
	for _, slot := range indices {
		stack := slots[slot]
		if stack.IsEmpty() {
			continue
		}
		inv.Add(stack.Item, slot, stack.Count)
	}
	return inv, nil
}

// IsEmpty reports whether c holds nothing. It stops at the first slot found
// with a positive count. Read failures, including a read returning no data,
// are returned as core.ErrDisconnected.
func IsEmpty(ctx context.Context, c core.Container) (bool, error) {
	slots, err := c.List(ctx)
	if err != nil {
		return false, core.NewDisconnected("list", err)
	}
	if slots == nil {
		return false, core.NewDisconnected("list", fmt.Errorf("%w: %s: no data", core.ErrScanFailed, c.Name()))
	}
	for _, stack := range slots {
		if stack.Count > 0 {
			return false, nil
		}
	}
	return true, nil
}

// Occupancy describes how full a container is.
type Occupancy struct {
	Size     int
	Used     int
	Contents core.Inventory
}

// Free returns the number of empty slots.
func (o Occupancy) Free() int { return max(o.Size-o.Used, 0) }

// Contains reports whether any slot holds item.
func (o Occupancy) Contains(item string) bool { return o.Contents.Total(item) > 0 }

// ReadOccupancy scans c and reports its size, used slot count and contents.
func ReadOccupancy(ctx context.Context, c core.Container) (Occupancy, error) {
	size, err := c.Size(ctx)
	if err != nil {
		return Occupancy{}, fmt.Errorf("%w: %s: %w", core.ErrScanFailed, c.Name(), err)
	}
	inv, err := Scan(ctx, c)
	if err != nil {
		return Occupancy{}, err
	}
	used := 0
	for _, rec := range inv {
		used += len(rec.Slots)
	}
	return Occupancy{Size: size, Used: used, Contents: inv}, nil
}
