package engine

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/logging"
)

// CallbackType defines the lifecycle points where callbacks can be executed.
//
// Callbacks provide a mechanism for hooking into a cycle without modifying
// the orchestration logic: metrics, auditing and custom logging all attach
// here.
//
// Available callback types:
//   - BeforeCycle/AfterCycle: around a complete cycle
//   - AfterTransfer: after each successful transfer
//   - TransferFailed: after each failed transfer
type CallbackType string

const (
	// CallbackBeforeCycle is triggered before the machine scan.
	CallbackBeforeCycle CallbackType = "before_cycle"

	// CallbackAfterTransfer is triggered after a transfer moved items.
	// Assignment and Outcome are set.
	CallbackAfterTransfer CallbackType = "after_transfer"

	// CallbackTransferFailed is triggered after a transfer failed.
	// Assignment and Err are set.
	CallbackTransferFailed CallbackType = "transfer_failed"

	// CallbackAfterCycle is triggered once the cycle finished, whatever the
	// outcome. Result is set.
	CallbackAfterCycle CallbackType = "after_cycle"
)

// CallbackContext carries the information a callback may need.
type CallbackContext struct {
	// CycleID identifies the cycle.
	CycleID string

	// Type indicates which callback type triggered this execution, allowing
	// shared implementations to branch on the lifecycle point.
	Type CallbackType

	// Phase names the sub-system that fired the callback, for example
	// "distribution" or "chain".
	Phase string

	// Policy is the name of the scheduling policy, if any.
	Policy string

	// Assignment is the transfer concerned by AfterTransfer and
	// TransferFailed.
	Assignment *core.Assignment

	// Outcome is set for AfterTransfer.
	Outcome *core.TransferOutcome

	// Err is set for TransferFailed.
	Err error

	// Elapsed is the wall time of the transfer for AfterTransfer and
	// TransferFailed.
	Elapsed time.Duration

	// Result is set for BeforeCycle (empty) and AfterCycle (complete) when
	// the distribution phase fires them.
	Result *CycleResult

	// Metadata provides extensible storage for custom callback data.
	Metadata map[string]any
}

// Callback defines the interface for cycle lifecycle hooks.
//
// Implementations should be fast: callbacks run synchronously inside the
// cycle. A returned error is logged by the caller and never aborts the cycle.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	cb := NewFunctionCallback(
//	    CallbackAfterTransfer,
//	    func(ctx context.Context, c *CallbackContext) error {
//	        fmt.Println("moved", c.Outcome.Transferred, c.Assignment.Item)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager keeps callbacks per type and runs them in registration
// order.
//
// Thread Safety:
// Registration is not synchronised. Register everything before the first
// cycle; execution is then safe for concurrent use.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty callback manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks runs every callback registered for callbackType. All of
// them run even if one fails; the errors are joined.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	if cm == nil {
		return nil
	}
	callbacks, exists := cm.callbacks[callbackType]
	if !exists {
		return nil
	}

	var errs []error
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoggingCallback writes one structured log line per lifecycle event.
//
// Example:
//
//	o := engine.New(p, func(o *engine.Options) {
//	    o.Callbacks = append(o.Callbacks, engine.NewLoggingCallback(engine.CallbackAfterCycle, logger))
//	})
type LoggingCallback struct {
	callbackType CallbackType
	logger       logging.Logger
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger logging.Logger) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logging.OrNoOp(logger),
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the event with whatever context is available. A
// *logging.StructuredLogger gets its LogCycle and LogTransfer records.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if sl, ok := c.logger.(*logging.StructuredLogger); ok && c.logStructured(sl, callbackCtx) {
		return nil
	}

	args := []any{"callback", string(c.callbackType), "cycle", callbackCtx.CycleID, "phase", callbackCtx.Phase}
	if a := callbackCtx.Assignment; a != nil {
		args = append(args, "machine", a.MachineID, "item", a.Item, "slot", a.SourceSlot)
	}
	if callbackCtx.Outcome != nil {
		args = append(args, "moved", callbackCtx.Outcome.Transferred)
	}
	if r := callbackCtx.Result; r != nil && c.callbackType == CallbackAfterCycle {
		args = append(args, "transfers", len(r.Transfers), "failed", len(r.Failed), "duration", r.Duration)
	}
	if callbackCtx.Err != nil {
		c.logger.Warn("Cycle event", append(args, "error", callbackCtx.Err)...)
		return nil
	}
	c.logger.Info("Cycle event", args...)
	return nil
}

func (c *LoggingCallback) logStructured(sl *logging.StructuredLogger, callbackCtx *CallbackContext) bool {
	if callbackCtx.CycleID != "" {
		sl = sl.WithCycle(callbackCtx.CycleID)
	}
	switch c.callbackType {
	case CallbackAfterCycle:
		r := callbackCtx.Result
		if r == nil {
			return false
		}
		sl.LogCycle(callbackCtx.Phase, len(r.MachineStates), r.EmptyCount, len(r.Transfers), len(r.Failed), r.Duration)
		return true
	case CallbackAfterTransfer, CallbackTransferFailed:
		a := callbackCtx.Assignment
		if a == nil {
			return false
		}
		moved := 0
		if callbackCtx.Outcome != nil {
			moved = callbackCtx.Outcome.Transferred
		}
		sl.LogTransfer(a.Item, a.SourceSlot, a.Target, moved, callbackCtx.Elapsed, callbackCtx.Err)
		return true
	}
	return false
}
