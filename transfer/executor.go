// Package transfer performs verified, race protected moves out of a source
// container.
package transfer

import (
	"context"
	"time"

	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/logging"
)

// ReasonInvalidAmount is the TransferFailedError reason for a non-positive
// requested amount.
const ReasonInvalidAmount = "invalid_amount"

// Options configures an Executor.
type Options struct {
	Logger logging.Logger
}

// Executor moves items from a source slot into a named target after checking
// that the slot still holds the expected item.
type Executor struct {
	logger logging.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(optFns ...func(o *Options)) *Executor {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{logger: logging.OrNoOp(opts.Logger)}
}

// Execute reads slot directly from source and, if it still holds expected,
// moves up to amount units into target. The check and the move are issued as
// one transport call when source implements core.VerifiedMover, otherwise as
// a Peek immediately followed by a Move.
//
// Failures are typed: *core.SlotChangedError when the slot no longer holds
// expected (nothing is moved), *core.TransferFailedError when the move
// reported zero units, and core.ErrDisconnected for transport failures. The
// returned outcome reports the units actually moved, which may be fewer than
// amount.
func (e *Executor) Execute(ctx context.Context, source core.Container, target string, slot int, expected string, amount int) (core.TransferOutcome, error) {
	start := time.Now()
	if amount <= 0 {
		return core.TransferOutcome{}, &core.TransferFailedError{Reason: ReasonInvalidAmount}
	}

	var (
		found core.ItemStack
		moved int
		err   error
	)
	if vm, ok := source.(core.VerifiedMover); ok {
		found, moved, err = vm.MoveIfMatch(ctx, target, slot, expected, amount)
		if err != nil {
			return core.TransferOutcome{}, core.NewDisconnected("move_if_match", err)
		}
		if found.IsEmpty() || found.Item != expected {
			return core.TransferOutcome{}, slotChanged(slot, expected, found)
		}
	} else {
		var present bool
		found, present, err = source.Peek(ctx, slot)
		if err != nil {
			return core.TransferOutcome{}, core.NewDisconnected("peek", err)
		}
		if !present || found.IsEmpty() || found.Item != expected {
			return core.TransferOutcome{}, slotChanged(slot, expected, found)
		}
		moved, err = source.Move(ctx, target, slot, amount)
		if err != nil {
			return core.TransferOutcome{}, core.NewDisconnected("move", err)
		}
	}

	if moved <= 0 {
		return core.TransferOutcome{}, &core.TransferFailedError{Reason: core.ReasonNoItemsTransferred}
	}

	e.logger.Debug("Transfer executed",
		"source", source.Name(),
		"target", target,
		"slot", slot,
		"item", expected,
		"moved", moved,
		"duration", time.Since(start),
	)
	return core.TransferOutcome{Transferred: moved, SourceSlot: slot}, nil
}

func slotChanged(slot int, expected string, found core.ItemStack) error {
	actual := ""
	if !found.IsEmpty() {
		actual = found.Item
	}
	return &core.SlotChangedError{Slot: slot, Expected: expected, Actual: actual}
}
