package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/restock/chain"
	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/engine"
	"github.com/hupe1980/restock/inventory"
	"github.com/hupe1980/restock/logging"
	"github.com/hupe1980/restock/metrics"
	"github.com/hupe1980/restock/statestore"
)

// DefaultInterval is the pause between two ticks.
const DefaultInterval = 5 * time.Second

// ErrUnknownSource is returned by Tick when the source container cannot be
// resolved on the network.
var ErrUnknownSource = errors.New("source container not found")

// Network resolves container names to live containers. container.Network
// implements it; the set is re-read every tick so that attach and detach
// events are picked up.
type Network interface {
	Containers() map[string]core.Container
}

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Chain enables the chain phase before every distribution cycle.
	Chain *chain.Engine
	// Processing names the processing container fed by Chain.
	Processing string
	// Interval between ticks in Run. Defaults to DefaultInterval.
	Interval time.Duration
	// StatusStore receives the machine states of every cycle.
	StatusStore core.StatusStore
	// Cache hands the chain's post-walk source view to the orchestrator.
	Cache *inventory.Cache
	// Recorder counts chain skips. Transfer metrics flow through callbacks.
	Recorder *metrics.Recorder
	Logger   logging.Logger
}

// TickResult is the outcome of one tick.
type TickResult struct {
	Chain    *chain.Result
	ChainErr error
	Cycle    *engine.CycleResult
}

// Runner drives the orchestrator on a fixed interval. Tick and Run are safe
// for concurrent use; ticks never overlap.
type Runner struct {
	orchestrator *engine.Orchestrator
	net          Network
	machines     []core.MachineConfig
	source       string

	chain       *chain.Engine
	processing  string
	interval    time.Duration
	statusStore core.StatusStore
	cache       *inventory.Cache
	recorder    *metrics.Recorder
	logger      logging.Logger

	mu    sync.Mutex
	ticks int
}

// New constructs a Runner with optional overrides.
func New(orchestrator *engine.Orchestrator, net Network, machines []core.MachineConfig, source string, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Interval:    DefaultInterval,
		StatusStore: statestore.NewInMemoryStore(),
		Cache:       inventory.NewCache(0, 0),
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	return &Runner{
		orchestrator: orchestrator,
		net:          net,
		machines:     append([]core.MachineConfig(nil), machines...),
		source:       source,
		chain:        opts.Chain,
		processing:   opts.Processing,
		interval:     opts.Interval,
		statusStore:  opts.StatusStore,
		cache:        opts.Cache,
		recorder:     opts.Recorder,
		logger:       logging.OrNoOp(opts.Logger),
	}
}

// StatusStore returns the store machine states are persisted to.
func (r *Runner) StatusStore() core.StatusStore { return r.statusStore }

// Ticks returns how many ticks have completed.
func (r *Runner) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Tick runs the chain phase (when configured) and one distribution cycle,
// then persists the machine states. Chain failures are reported in the
// result and never prevent the cycle.
func (r *Runner) Tick(ctx context.Context) (*TickResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer logging.StartTimer(r.logger, "tick")()

	containers := r.net.Containers()
	source, ok := containers[r.source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, r.source)
	}
	defer r.cache.Invalidate(r.source)

	res := &TickResult{}
	if r.chain != nil && r.processing != "" {
		res.Chain, res.ChainErr = r.runChain(ctx, source, containers[r.processing])
	}

	req := engine.Request{Machines: r.machines, Containers: containers, Source: source}
	if inv, ok := r.cache.Get(r.source); ok {
		req.Inventory = inv
	}

	cycle, err := r.orchestrator.Run(ctx, req)
	res.Cycle = cycle
	if err != nil {
		return res, err
	}

	if err := r.statusStore.Save(ctx, cycle.CycleID, cycle.MachineStates); err != nil {
		r.logger.Warn("Persisting machine status failed", "cycle", cycle.CycleID, "error", err)
	}
	r.ticks++
	return res, nil
}

func (r *Runner) runChain(ctx context.Context, source, processing core.Container) (*chain.Result, error) {
	if processing == nil {
		r.logger.Warn("Processing container not found, skipping chain", "processing", r.processing)
		return nil, fmt.Errorf("processing container %q not found", r.processing)
	}

	inv, hit, err := r.cache.Scan(ctx, source)
	if err != nil {
		r.logger.Warn("Chain snapshot failed", "error", err)
		return nil, err
	}
	if hit {
		r.logger.Debug("Chain snapshot served from cache", "source", r.source)
	}

	res, err := r.chain.Process(ctx, source, processing, inv)
	if err != nil {
		r.logger.Warn("Chain phase failed", "error", err)
		return nil, err
	}
	if r.recorder != nil {
		r.recorder.RecordChain(res)
	}
	r.cache.Put(r.source, res.Remaining)
	return res, nil
}

// Run ticks immediately and then on every interval until ctx is done. Tick
// errors are logged and the loop continues. Run returns nil on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Runner started", "interval", r.interval.String(), "machines", len(r.machines))
	for {
		if _, err := r.Tick(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("Tick failed", "error", err)
		}

		select {
		case <-ctx.Done():
			r.logger.Info("Runner stopped", "ticks", r.Ticks())
			return nil
		case <-ticker.C:
		}
	}
}
