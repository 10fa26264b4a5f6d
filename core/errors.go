package core

import (
	"errors"
	"fmt"
)

var (
	// ErrScanFailed is returned when a container read produced no usable data.
	ErrScanFailed = errors.New("scan failed")
	// ErrDisconnected marks a transport level failure.
	ErrDisconnected = errors.New("disconnected")
	// ErrSlotChanged is the race guard: the expected item was not found at
	// the expected slot at execution time.
	ErrSlotChanged = errors.New("slot changed")
	// ErrTransferFailed is returned when the move primitive moved nothing.
	ErrTransferFailed = errors.New("transfer failed")
	// ErrUnknownType marks a machine type reference that does not resolve.
	ErrUnknownType = errors.New("unknown machine type")
	// ErrUnknownMaterial marks a material reference that does not resolve.
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrNoCandidate is the normal "nothing to do this turn" outcome.
	ErrNoCandidate = errors.New("no candidate available")
)

// ReasonNoItemsTransferred is the TransferFailedError reason used when the
// move primitive reported zero units.
const ReasonNoItemsTransferred = "no_items_transferred"

// SlotChangedError carries the detail of a tripped race guard.
type SlotChangedError struct {
	Slot     int
	Expected string
	Actual   string
}

func (e *SlotChangedError) Error() string {
	actual := e.Actual
	if actual == "" {
		actual = "<empty>"
	}
	return fmt.Sprintf("slot %d changed: expected %s, found %s", e.Slot, e.Expected, actual)
}

// Unwrap allows errors.Is(err, ErrSlotChanged).
func (e *SlotChangedError) Unwrap() error { return ErrSlotChanged }

// TransferFailedError reports a logical no-op transfer.
type TransferFailedError struct {
	Reason string
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("transfer failed: %s", e.Reason)
}

// Unwrap allows errors.Is(err, ErrTransferFailed).
func (e *TransferFailedError) Unwrap() error { return ErrTransferFailed }

// DisconnectedError wraps the transport error raised by Op.
type DisconnectedError struct {
	Op  string
	Err error
}

// NewDisconnected wraps err unless it already carries ErrDisconnected.
func NewDisconnected(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDisconnected) {
		return err
	}
	return &DisconnectedError{Op: op, Err: err}
}

func (e *DisconnectedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: disconnected", e.Op)
	}
	return fmt.Sprintf("%s: disconnected: %v", e.Op, e.Err)
}

// Unwrap exposes both ErrDisconnected and the underlying cause.
func (e *DisconnectedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDisconnected}
	}
	return []error{ErrDisconnected, e.Err}
}
