// Package chain feeds a fixed transformation chain (A → B → C …) through one
// shared processing container.
//
// Unlike the distribution cycle, the chain does not consult a policy: it walks
// its links in order and moves a link's input into the processing container
// when upstream stock is healthy and downstream stock is not saturated. A
// full processing container stops the walk for every remaining link, because
// they all share it.
package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/restock/container"
	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/engine"
	"github.com/hupe1980/restock/inventory"
	"github.com/hupe1980/restock/logging"
	"github.com/hupe1980/restock/transfer"
)

// Phase labels transfers made by the chain engine in callbacks and metrics.
const Phase = "chain"

// SkipReasonCode enumerates why a link moved nothing.
type SkipReasonCode string

const (
	// SkipReasonProcessingFull stops the walk: no free slot is left.
	SkipReasonProcessingFull SkipReasonCode = "processing_full"
	// SkipReasonProcessingUnavailable stops the walk: the processing
	// container could not be read.
	SkipReasonProcessingUnavailable SkipReasonCode = "processing_unavailable"
	// SkipReasonAlreadyQueued means the processing container still holds
	// this link's input from an earlier tick.
	SkipReasonAlreadyQueued SkipReasonCode = "already_queued"
	// SkipReasonLowInput means input stock is below reserve plus one transfer.
	SkipReasonLowInput SkipReasonCode = "low_input"
	// SkipReasonOutputSaturated means output stock reached the maximum.
	SkipReasonOutputSaturated SkipReasonCode = "output_saturated"
	// SkipReasonNoSourceSlot means the snapshot lists the input without a slot.
	SkipReasonNoSourceSlot SkipReasonCode = "no_source_slot"
	// SkipReasonTransferFailed means the executor returned an error.
	SkipReasonTransferFailed SkipReasonCode = "transfer_failed"
)

// Halts reports whether the reason stops the remaining walk.
func (c SkipReasonCode) Halts() bool {
	return c == SkipReasonProcessingFull || c == SkipReasonProcessingUnavailable
}

// SkipReason explains why a link was skipped.
type SkipReason struct {
	Reason SkipReasonCode
	Detail string
}

// LinkResult is the outcome of one attempted link.
type LinkResult struct {
	Link core.ChainLink
	// Skip is nil when the link transferred.
	Skip     *SkipReason
	Transfer *core.TransferResult
	Err      error
}

// Result reports one chain walk. Links holds an entry for every link that
// was looked at; links after a halting skip are absent.
type Result struct {
	Links     []LinkResult
	Transfers []core.TransferResult
	// Remaining is the running inventory after the walk.
	Remaining core.Inventory
	Halted    bool
}

// Skipped returns the skip reason code per link input.
func (r *Result) Skipped() map[string]SkipReasonCode {
	out := make(map[string]SkipReasonCode)
	for _, l := range r.Links {
		if l.Skip != nil {
			out[l.Link.Input] = l.Skip.Reason
		}
	}
	return out
}

// Options configures an Engine.
type Options struct {
	// TransferAmount is requested per link. Defaults to 64.
	TransferAmount int
	// MinInputReserve is the input stock floor the walk never draws below.
	MinInputReserve int
	// MaxOutputStock stops feeding a link once its output reaches it. Zero
	// means no limit.
	MaxOutputStock int
	// Executor performs transfers. Defaults to a transfer.Executor.
	Executor engine.TransferExecutor
	// Callbacks receive AfterTransfer and TransferFailed with Phase "chain".
	Callbacks *engine.CallbackManager
	Logger    logging.Logger
}

// Engine walks the chain.
type Engine struct {
	links     []core.ChainLink
	amount    int
	reserve   int
	maxOutput int
	executor  engine.TransferExecutor
	callbacks *engine.CallbackManager
	logger    logging.Logger
}

// New creates a chain engine over links, walked in the given order.
func New(links []core.ChainLink, optFns ...func(o *Options)) *Engine {
	opts := Options{TransferAmount: 64}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.TransferAmount <= 0 {
		opts.TransferAmount = 64
	}
	logger := logging.OrNoOp(opts.Logger)
	if opts.Executor == nil {
		opts.Executor = transfer.NewExecutor(func(o *transfer.Options) { o.Logger = logger })
	}
	return &Engine{
		links:     append([]core.ChainLink(nil), links...),
		amount:    opts.TransferAmount,
		reserve:   max(opts.MinInputReserve, 0),
		maxOutput: opts.MaxOutputStock,
		executor:  opts.Executor,
		callbacks: opts.Callbacks,
		logger:    logger,
	}
}

// Links returns the configured links.
func (e *Engine) Links() []core.ChainLink { return append([]core.ChainLink(nil), e.links...) }

// Process walks every link once. inv is the source snapshot to start from;
// when nil the source is scanned. inv is never mutated. Per-link failures are
// recorded in the result and the walk continues; an error is returned only
// when no source snapshot could be obtained.
func (e *Engine) Process(ctx context.Context, source, processing core.Container, inv core.Inventory) (*Result, error) {
	source = container.Safe(source)
	processing = container.Safe(processing)

	if source == nil {
		return nil, fmt.Errorf("chain snapshot: %w: no source container", core.ErrScanFailed)
	}
	if inv == nil {
		scanned, err := inventory.Scan(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("chain snapshot: %w", err)
		}
		inv = scanned
	}

	res := &Result{Remaining: inv.Clone()}
	if processing == nil {
		res.Halted = true
		return res, nil
	}
	local := res.Remaining

	for _, link := range e.links {
		lr := LinkResult{Link: link}

		occ, err := inventory.ReadOccupancy(ctx, processing)
		switch {
		case err != nil:
			lr.Skip = &SkipReason{Reason: SkipReasonProcessingUnavailable, Detail: err.Error()}
			lr.Err = err
		case occ.Free() == 0:
			lr.Skip = &SkipReason{Reason: SkipReasonProcessingFull, Detail: fmt.Sprintf("%d/%d slots used", occ.Used, occ.Size)}
		case occ.Contains(link.Input):
			lr.Skip = &SkipReason{Reason: SkipReasonAlreadyQueued, Detail: fmt.Sprintf("%d queued", occ.Contents.Total(link.Input))}
		case local.Total(link.Input) < e.reserve+e.amount:
			lr.Skip = &SkipReason{Reason: SkipReasonLowInput, Detail: fmt.Sprintf("have %d need %d", local.Total(link.Input), e.reserve+e.amount)}
		case e.maxOutput > 0 && local.Total(link.Output) >= e.maxOutput:
			lr.Skip = &SkipReason{Reason: SkipReasonOutputSaturated, Detail: fmt.Sprintf("have %d max %d", local.Total(link.Output), e.maxOutput)}
		default:
			e.feed(ctx, source, processing, local, &lr, res)
		}

		res.Links = append(res.Links, lr)
		if lr.Skip != nil {
			e.logger.Debug("Chain link skipped", "input", link.Input, "output", link.Output, "reason", string(lr.Skip.Reason), "detail", lr.Skip.Detail)
			if lr.Skip.Reason.Halts() {
				res.Halted = true
				e.logger.Info("Chain halted", "reason", string(lr.Skip.Reason), "at", link.Input)
				break
			}
		}
	}
	return res, nil
}

func (e *Engine) feed(ctx context.Context, source, processing core.Container, local core.Inventory, lr *LinkResult, res *Result) {
	link := lr.Link
	loc, ok := local.FirstSlot(link.Input)
	if !ok {
		lr.Skip = &SkipReason{Reason: SkipReasonNoSourceSlot}
		return
	}

	a := core.Assignment{
		MachineID:  processing.Name(),
		Target:     processing.Name(),
		Item:       link.Input,
		SourceSlot: loc.Slot,
		Amount:     min(e.amount, loc.Count),
	}
	began := time.Now()
	outcome, err := e.executor.Execute(ctx, source, a.Target, a.SourceSlot, a.Item, a.Amount)
	elapsed := time.Since(began)
	if err != nil {
		lr.Skip = &SkipReason{Reason: SkipReasonTransferFailed, Detail: err.Error()}
		lr.Err = err
		e.logger.Warn("Chain transfer failed", "input", link.Input, "slot", a.SourceSlot, "error", err)
		e.fire(ctx, engine.CallbackTransferFailed, &engine.CallbackContext{Assignment: &a, Err: err, Elapsed: elapsed})
		return
	}

	local.Consume(link.Input, loc.Slot, outcome.Transferred)
	tr := core.TransferResult{Assignment: a, Outcome: outcome}
	lr.Transfer = &tr
	res.Transfers = append(res.Transfers, tr)
	e.logger.Info("Chain transfer completed", "input", link.Input, "output", link.Output, "moved", outcome.Transferred)
	e.fire(ctx, engine.CallbackAfterTransfer, &engine.CallbackContext{Assignment: &tr.Assignment, Outcome: &tr.Outcome, Elapsed: elapsed})
}

func (e *Engine) fire(ctx context.Context, t engine.CallbackType, cbCtx *engine.CallbackContext) {
	cbCtx.Type = t
	cbCtx.Phase = Phase
	if err := e.callbacks.ExecuteCallbacks(ctx, t, cbCtx); err != nil {
		e.logger.Warn("Callback failed", "callback", string(t), "error", err)
	}
}
