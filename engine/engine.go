package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/restock/container"
	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/inventory"
	"github.com/hupe1980/restock/logging"
	"github.com/hupe1980/restock/machine"
	"github.com/hupe1980/restock/transfer"
)

// PhaseDistribution labels transfers made by the Orchestrator.
const PhaseDistribution = "distribution"

// MachineScanner classifies machines as empty or not.
type MachineScanner interface {
	ScanAll(ctx context.Context, targets []core.MachineConfig, containers map[string]core.Container) (core.ScanResult, error)
}

// TransferExecutor performs one verified transfer.
type TransferExecutor interface {
	Execute(ctx context.Context, source core.Container, target string, slot int, expected string, amount int) (core.TransferOutcome, error)
}

// Options configures an Orchestrator using the functional options pattern.
//
// Every collaborator has a default so that
//
//	o := engine.New(policy.NewWeighted(materials, types))
//
// is immediately usable.
type Options struct {
	// Scanner classifies machines. Defaults to a machine.Scanner using
	// Presence and Logger.
	Scanner MachineScanner

	// Executor performs transfers. Defaults to a transfer.Executor.
	Executor TransferExecutor

	// Presence is handed to the default Scanner. When nil, a machine is
	// reachable if its container is in the request's container map.
	Presence core.Presence

	// Callbacks are registered on the orchestrator's CallbackManager.
	Callbacks []Callback

	// Logger provides structured logging. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Orchestrator runs one distribution cycle at a time: scan machines, take an
// inventory snapshot of the source, ask the policy for assignments and
// execute them one after another against the live source.
//
// Failure policy:
//   - An unreachable machine is reported as not empty and the scan goes on.
//   - A source snapshot failure ends the cycle with zero transfers.
//   - A failed assignment is logged, recorded in CycleResult.Failed and the
//     next assignment is attempted.
//
// Containers handed to Run are wrapped with container.Safe, so a panicking
// transport implementation surfaces as core.ErrDisconnected instead of
// crashing the caller.
//
// An Orchestrator holds no per-cycle state and may be reused across cycles.
// Cycles must not overlap on the same containers.
type Orchestrator struct {
	policy    core.Policy
	scanner   MachineScanner
	executor  TransferExecutor
	callbacks *CallbackManager
	logger    logging.Logger
}

// New creates an Orchestrator for policy.
func New(policy core.Policy, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.OrNoOp(opts.Logger)

	if opts.Scanner == nil {
		opts.Scanner = machine.NewScanner(func(o *machine.Options) {
			o.Presence = opts.Presence
			o.Logger = logger
		})
	}
	if opts.Executor == nil {
		opts.Executor = transfer.NewExecutor(func(o *transfer.Options) {
			o.Logger = logger
		})
	}

	cm := NewCallbackManager()
	for _, cb := range opts.Callbacks {
		cm.RegisterCallback(cb)
	}

	return &Orchestrator{
		policy:    policy,
		scanner:   opts.Scanner,
		executor:  opts.Executor,
		callbacks: cm,
		logger:    logger,
	}
}

// Callbacks exposes the orchestrator's CallbackManager so hooks can be added
// after construction.
func (o *Orchestrator) Callbacks() *CallbackManager { return o.callbacks }

// Policy returns the configured policy.
func (o *Orchestrator) Policy() core.Policy { return o.policy }

// Request is the input of one cycle.
type Request struct {
	// Machines lists the configured machines to scan.
	Machines []core.MachineConfig
	// Containers maps container references to containers.
	Containers map[string]core.Container
	// Source is the store transfers are drawn from.
	Source core.Container
	// Inventory, when non-nil, is used instead of scanning Source. It lets a
	// driver reuse a snapshot taken earlier in the same tick.
	Inventory core.Inventory
}

// CycleResult reports one cycle.
type CycleResult struct {
	CycleID string
	// MachineStates are the states as scanned at the start of the cycle.
	MachineStates []core.MachineState
	EmptyCount    int
	ScanFailures  int
	// Prescanned is true when Request.Inventory was used.
	Prescanned bool
	// SnapshotErr is set when the source could not be scanned.
	SnapshotErr error
	Assignments []core.Assignment
	Transfers   []core.TransferResult
	Failed      []core.FailedAssignment
	Duration    time.Duration
}

// Moved returns the total units moved per item.
func (r *CycleResult) Moved() map[string]int {
	out := make(map[string]int)
	for _, t := range r.Transfers {
		out[t.Assignment.Item] += t.Outcome.Transferred
	}
	return out
}

// Run executes one cycle.
//
// The returned error is non-nil only when the machine scan could not run at
// all or ctx was cancelled between assignments; every other failure is
// recovered and reported in the result. When no machine is empty the cycle
// returns right after the scan without touching the source.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*CycleResult, error) {
	start := time.Now()
	res := &CycleResult{CycleID: uuid.NewString()}
	log := logging.ForCycle(o.logger, res.CycleID)

	o.fire(ctx, CallbackBeforeCycle, &CallbackContext{CycleID: res.CycleID, Result: res})
	defer func() {
		res.Duration = time.Since(start)
		o.fire(ctx, CallbackAfterCycle, &CallbackContext{CycleID: res.CycleID, Result: res})
	}()

	scan, err := o.scanner.ScanAll(ctx, req.Machines, container.SafeAll(req.Containers))
	if err != nil {
		log.Error("Machine scan failed", "error", err)
		return res, fmt.Errorf("scan machines: %w", err)
	}
	res.MachineStates = scan.Results
	res.EmptyCount = len(scan.EmptyIDs)
	res.ScanFailures = scan.Failures
	if scan.Failures > 0 {
		log.Warn("Some machines could not be scanned", "failures", scan.Failures)
	}
	if res.EmptyCount == 0 {
		log.Debug("No empty machines", "machines", len(scan.Results))
		return res, nil
	}

	source := container.Safe(req.Source)
	inv, err := o.snapshot(ctx, source, req.Inventory)
	if err != nil {
		res.SnapshotErr = err
		log.Warn("Source snapshot failed, skipping transfers", "error", err)
		return res, nil
	}
	res.Prescanned = req.Inventory != nil

	res.Assignments = o.policy.Schedule(scan.Results, inv)
	if len(res.Assignments) == 0 {
		log.Info("No assignments", "policy", o.policy.Name(), "empty", res.EmptyCount)
		return res, nil
	}

	for i, a := range res.Assignments {
		if err := ctx.Err(); err != nil {
			for _, rest := range res.Assignments[i:] {
				res.Failed = append(res.Failed, core.FailedAssignment{Assignment: rest, Err: err})
			}
			return res, err
		}

		began := time.Now()
		outcome, err := o.executor.Execute(ctx, source, a.Target, a.SourceSlot, a.Item, a.Amount)
		elapsed := time.Since(began)
		if err != nil {
			res.Failed = append(res.Failed, core.FailedAssignment{Assignment: a, Err: err})
			log.Warn("Transfer failed",
				"machine", a.MachineID, "item", a.Item, "slot", a.SourceSlot, "error", err)
			assignment := a
			o.fire(ctx, CallbackTransferFailed, &CallbackContext{CycleID: res.CycleID, Assignment: &assignment, Err: err, Elapsed: elapsed})
			continue
		}

		tr := core.TransferResult{Assignment: a, Outcome: outcome}
		res.Transfers = append(res.Transfers, tr)
		log.Info("Transfer completed",
			"machine", a.MachineID, "item", a.Item, "moved", outcome.Transferred)
		o.fire(ctx, CallbackAfterTransfer, &CallbackContext{CycleID: res.CycleID, Assignment: &tr.Assignment, Outcome: &tr.Outcome, Elapsed: elapsed})
	}

	log.Info("Cycle complete",
		"empty", res.EmptyCount,
		"transfers", len(res.Transfers),
		"failures", len(res.Failed),
	)
	return res, nil
}

// snapshot requires a source even when pre is supplied, since every
// assignment executes against it.
func (o *Orchestrator) snapshot(ctx context.Context, source core.Container, pre core.Inventory) (core.Inventory, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: no source container", core.ErrScanFailed)
	}
	if pre != nil {
		return pre.Clone(), nil
	}
	return inventory.Scan(ctx, source)
}

func (o *Orchestrator) fire(ctx context.Context, t CallbackType, cbCtx *CallbackContext) {
	cbCtx.Type = t
	cbCtx.Phase = PhaseDistribution
	cbCtx.Policy = o.policy.Name()
	if err := o.callbacks.ExecuteCallbacks(ctx, t, cbCtx); err != nil {
		o.logger.Warn("Callback failed", "callback", string(t), "cycle", cbCtx.CycleID, "error", err)
	}
}
