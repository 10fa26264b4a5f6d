package core

import "sort"

// Location is one slot holding part of an item's total.
type Location struct {
	Slot  int `json:"slot"`
	Count int `json:"count"`
}

// ItemRecord aggregates every slot holding one item identity.
// Invariant: Total == sum(Slots[].Count).
type ItemRecord struct {
	Total int        `json:"total"`
	Slots []Location `json:"slots"`
}

// Inventory maps item identity to its aggregated record. Values handed to a
// Policy must be treated as read-only; use Clone before local bookkeeping.
type Inventory map[string]ItemRecord

// Add records count units of item at slot, keeping slots ordered.
func (inv Inventory) Add(item string, slot, count int) {
	if item == "" || count <= 0 {
		return
	}
	rec := inv[item]
	rec.Total += count
	rec.Slots = append(rec.Slots, Location{Slot: slot, Count: count})
	sort.SliceStable(rec.Slots, func(i, j int) bool { return rec.Slots[i].Slot < rec.Slots[j].Slot })
	inv[item] = rec
}

// Total returns the aggregated count for item, 0 if absent.
func (inv Inventory) Total(item string) int {
	return inv[item].Total
}

// FirstSlot returns the first location holding item.
func (inv Inventory) FirstSlot(item string) (Location, bool) {
	rec, ok := inv[item]
	if !ok || len(rec.Slots) == 0 {
		return Location{}, false
	}
	return rec.Slots[0], true
}

// Items returns the item identities in lexicographic order.
func (inv Inventory) Items() []string {
	items := make([]string, 0, len(inv))
	for item := range inv {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// Clone returns a deep copy safe for independent mutation.
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return Inventory{}
	}
	out := make(Inventory, len(inv))
	for item, rec := range inv {
		slots := make([]Location, len(rec.Slots))
		copy(slots, rec.Slots)
		out[item] = ItemRecord{Total: rec.Total, Slots: slots}
	}
	return out
}

// Consume removes amount units of item from slot: the slot entry is dropped
// when it reaches zero and the item entry is dropped when its total does.
// Consuming more than the slot holds clamps at the slot's count.
func (inv Inventory) Consume(item string, slot, amount int) {
	rec, ok := inv[item]
	if !ok || amount <= 0 {
		return
	}
	for i := range rec.Slots {
		if rec.Slots[i].Slot != slot {
			continue
		}
		taken := min(amount, rec.Slots[i].Count)
		rec.Slots[i].Count -= taken
		rec.Total -= taken
		if rec.Slots[i].Count <= 0 {
			rec.Slots = append(rec.Slots[:i:i], rec.Slots[i+1:]...)
		}
		break
	}
	if rec.Total <= 0 {
		delete(inv, item)
		return
	}
	inv[item] = rec
}

// Equal reports whether two inventories hold identical records.
func (inv Inventory) Equal(other Inventory) bool {
	if len(inv) != len(other) {
		return false
	}
	for item, rec := range inv {
		o, ok := other[item]
		if !ok || o.Total != rec.Total || len(o.Slots) != len(rec.Slots) {
			return false
		}
		for i := range rec.Slots {
			if rec.Slots[i] != o.Slots[i] {
				return false
			}
		}
	}
	return true
}
