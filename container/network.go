package container

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/restock/core"
)

// DefaultStackLimit is the largest count a single slot may hold.
const DefaultStackLimit = 64

// ErrNotAttached is returned for calls against a chest that is not (or no
// longer) attached to the network.
var ErrNotAttached = errors.New("container not attached")

// Network is a volatile, process local transport joining named chests. A
// single mutex serialises every operation so that MoveIfMatch is atomic with
// respect to external actors mutating chests through the same network.
type Network struct {
	mu         sync.Mutex
	chests     map[string]*Chest
	detached   map[string]bool
	stackLimit int
}

// NetworkOptions configures a Network.
type NetworkOptions struct {
	// StackLimit caps the count of a single slot. Defaults to DefaultStackLimit.
	StackLimit int
}

// NewNetwork constructs an empty network.
func NewNetwork(optFns ...func(o *NetworkOptions)) *Network {
	opts := NetworkOptions{StackLimit: DefaultStackLimit}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.StackLimit <= 0 {
		opts.StackLimit = DefaultStackLimit
	}
	return &Network{
		chests:     make(map[string]*Chest),
		detached:   make(map[string]bool),
		stackLimit: opts.StackLimit,
	}
}

// AddChest creates and attaches a chest with the given number of slots. An
// existing chest with the same name is replaced.
func (n *Network) AddChest(name string, size int) *Chest {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := &Chest{name: name, size: size, slots: make(map[int]core.ItemStack), net: n}
	n.chests[name] = c
	delete(n.detached, name)
	return c
}

// Chest returns the named chest if it exists, attached or not.
func (n *Network) Chest(name string) (*Chest, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	c, ok := n.chests[name]
	return c, ok
}

// Containers returns every chest keyed by name, ready to hand to a scanner.
func (n *Network) Containers() map[string]core.Container {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string]core.Container, len(n.chests))
	for name, c := range n.chests {
		out[name] = c
	}
	return out
}

// Names returns the chest names in lexicographic order.
func (n *Network) Names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, 0, len(n.chests))
	for name := range n.chests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detach simulates a peripheral dropping off the network.
func (n *Network) Detach(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.detached[name] = true
}

// Attach reverses Detach.
func (n *Network) Attach(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.detached, name)
}

// IsPresent implements core.Presence.
func (n *Network) IsPresent(_ context.Context, ref string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.presentLocked(ref)
}

func (n *Network) presentLocked(ref string) bool {
	_, ok := n.chests[ref]
	return ok && !n.detached[ref]
}

// moveLocked moves up to amount units from src slot into dst, stacking onto
// matching slots first and then into empty ones. Caller holds n.mu.
func (n *Network) moveLocked(src *Chest, dstName string, slot, amount int) (int, error) {
	if !n.presentLocked(src.name) {
		return 0, fmt.Errorf("%s: %w", src.name, ErrNotAttached)
	}
	if !n.presentLocked(dstName) {
		return 0, fmt.Errorf("%s: %w", dstName, ErrNotAttached)
	}
	if slot < 1 || slot > src.size {
		return 0, fmt.Errorf("slot %d out of range 1..%d", slot, src.size)
	}
	stack, ok := src.slots[slot]
	if !ok || stack.IsEmpty() || amount <= 0 {
		return 0, nil
	}
	dst := n.chests[dstName]
	remaining := min(amount, stack.Count)
	moved := 0

	for s := 1; s <= dst.size && remaining > 0; s++ {
		cur, ok := dst.slots[s]
		if !ok || cur.Item != stack.Item || cur.Count >= n.stackLimit {
			continue
		}
		add := min(remaining, n.stackLimit-cur.Count)
		cur.Count += add
		dst.slots[s] = cur
		remaining -= add
		moved += add
	}
	for s := 1; s <= dst.size && remaining > 0; s++ {
		if _, ok := dst.slots[s]; ok {
			continue
		}
		add := min(remaining, n.stackLimit)
		dst.slots[s] = core.ItemStack{Item: stack.Item, Count: add}
		remaining -= add
		moved += add
	}

	stack.Count -= moved
	if stack.Count <= 0 {
		delete(src.slots, slot)
	} else {
		src.slots[slot] = stack
	}
	return moved, nil
}
