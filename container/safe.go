package container

import (
	"context"
	"fmt"

	"github.com/hupe1980/restock/core"
)

// SafeContainer wraps a Container at the transport boundary. Panics raised by
// the wrapped implementation and plain transport errors are both returned as
// core.DisconnectedError so that the engine only ever sees the taxonomy.
type SafeContainer struct {
	inner core.Container
}

var (
	_ core.Container     = (*SafeContainer)(nil)
	_ core.VerifiedMover = (*SafeContainer)(nil)
)

// Safe wraps c. Wrapping an already safe container returns it unchanged.
func Safe(c core.Container) core.Container {
	if c == nil {
		return nil
	}
	if s, ok := c.(*SafeContainer); ok {
		return s
	}
	return &SafeContainer{inner: c}
}

// SafeAll wraps every container of a name keyed map. A nil map stays nil.
func SafeAll(m map[string]core.Container) map[string]core.Container {
	if m == nil {
		return nil
	}
	out := make(map[string]core.Container, len(m))
	for k, c := range m {
		out[k] = Safe(c)
	}
	return out
}

// Unwrap returns the wrapped container.
func (s *SafeContainer) Unwrap() core.Container { return s.inner }

func recovered(op string, errp *error) {
	if r := recover(); r != nil {
		*errp = core.NewDisconnected(op, fmt.Errorf("panic: %v", r))
	}
}

// Name implements core.Container.
func (s *SafeContainer) Name() string { return s.inner.Name() }

// List implements core.Container.
func (s *SafeContainer) List(ctx context.Context) (slots map[int]core.ItemStack, err error) {
	defer recovered("list", &err)
	slots, err = s.inner.List(ctx)
	return slots, core.NewDisconnected("list", err)
}

// Size implements core.Container.
func (s *SafeContainer) Size(ctx context.Context) (n int, err error) {
	defer recovered("size", &err)
	n, err = s.inner.Size(ctx)
	return n, core.NewDisconnected("size", err)
}

// Peek implements core.Container.
func (s *SafeContainer) Peek(ctx context.Context, slot int) (stack core.ItemStack, ok bool, err error) {
	defer recovered("peek", &err)
	stack, ok, err = s.inner.Peek(ctx, slot)
	return stack, ok, core.NewDisconnected("peek", err)
}

// Move implements core.Container.
func (s *SafeContainer) Move(ctx context.Context, target string, slot, amount int) (moved int, err error) {
	defer recovered("move", &err)
	moved, err = s.inner.Move(ctx, target, slot, amount)
	return moved, core.NewDisconnected("move", err)
}

// MoveIfMatch implements core.VerifiedMover when the wrapped container does;
// otherwise it issues Peek and Move back to back.
func (s *SafeContainer) MoveIfMatch(ctx context.Context, target string, slot int, expected string, amount int) (found core.ItemStack, moved int, err error) {
	defer recovered("move_if_match", &err)
	if vm, ok := s.inner.(core.VerifiedMover); ok {
		found, moved, err = vm.MoveIfMatch(ctx, target, slot, expected, amount)
		return found, moved, core.NewDisconnected("move_if_match", err)
	}
	found, present, err := s.inner.Peek(ctx, slot)
	if err != nil {
		return core.ItemStack{}, 0, core.NewDisconnected("peek", err)
	}
	if !present || found.Item != expected {
		return found, 0, nil
	}
	moved, err = s.inner.Move(ctx, target, slot, amount)
	return found, moved, core.NewDisconnected("move", err)
}
