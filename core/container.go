package core

import "context"

// ItemStack is the content of a single slot: an opaque item identity (for
// example a namespaced material id) and a count.
type ItemStack struct {
	Item  string `json:"item" yaml:"item"`
	Count int    `json:"count" yaml:"count"`
}

// IsEmpty reports whether the stack holds nothing usable.
func (s ItemStack) IsEmpty() bool { return s.Item == "" || s.Count <= 0 }

// Container is a slot based storage entity reachable through the transport.
// Slots are 1-based. Every call may fail with a transport level error.
type Container interface {
	// Name is the logical reference other containers use as a Move target.
	Name() string
	// List returns every occupied slot.
	List(ctx context.Context) (map[int]ItemStack, error)
	// Size returns the number of slots.
	Size(ctx context.Context) (int, error)
	// Peek reads a single slot. The boolean is false when the slot is empty.
	Peek(ctx context.Context, slot int) (ItemStack, bool, error)
	// Move pushes up to amount units from slot into the named target and
	// returns how many units actually moved.
	Move(ctx context.Context, target string, slot, amount int) (int, error)
}

// VerifiedMover is an optional capability for transports that can check a
// slot and move from it in one uninterrupted operation. Implementations must
// not move anything when the slot does not hold expected; they return the
// stack actually found in that case with a zero moved count.
type VerifiedMover interface {
	MoveIfMatch(ctx context.Context, target string, slot int, expected string, amount int) (ItemStack, int, error)
}

// Presence answers whether a logical container reference is currently
// reachable on the transport.
type Presence interface {
	IsPresent(ctx context.Context, ref string) bool
}

// PresenceFunc adapts a function to the Presence interface.
type PresenceFunc func(ctx context.Context, ref string) bool

// IsPresent implements Presence.
func (f PresenceFunc) IsPresent(ctx context.Context, ref string) bool { return f(ctx, ref) }
