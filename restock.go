// Package restock provides a high-level façade over the scanners, policies,
// transfer executor, chain engine and runner. Most applications interact with
// this package by:
//  1. Loading and validating a config.Config
//  2. Creating a Restock via New() over a container network
//  3. Calling Tick once, or Run until the context is cancelled
//
// All defaults are safe for local development and testing; production
// deployments typically supply a durable status store, a Prometheus registry
// and a structured logger.
package restock

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/restock/chain"
	"github.com/hupe1980/restock/config"
	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/engine"
	"github.com/hupe1980/restock/logging"
	"github.com/hupe1980/restock/metrics"
	"github.com/hupe1980/restock/policy"
	"github.com/hupe1980/restock/runner"
	"github.com/hupe1980/restock/statestore"
)

// Network is the container transport restock runs against: it lists the
// attached containers and answers presence checks. container.Network
// implements it.
type Network interface {
	runner.Network
	core.Presence
}

// Options configures the Restock instance.
type Options struct {
	// StatusStore persists machine states. Defaults to an in-memory store.
	StatusStore core.StatusStore
	// Registerer receives the Prometheus collectors. Nil disables metrics.
	Registerer prometheus.Registerer
	// Callbacks are registered on both the orchestrator and the chain
	// engine.
	Callbacks []engine.Callback
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Restock is the high-level façade aggregating the engine and its services.
type Restock struct {
	cfg          *config.Config
	policy       core.Policy
	orchestrator *engine.Orchestrator
	chain        *chain.Engine
	runner       *runner.Runner
	recorder     *metrics.Recorder
	statusStore  core.StatusStore
}

// New validates cfg and wires every component over net.
func New(cfg *config.Config, net Network, optFns ...func(o *Options)) (*Restock, error) {
	opts := Options{
		StatusStore: statestore.NewInMemoryStore(),
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.OrNoOp(opts.Logger)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pol, err := NewPolicy(cfg, logger)
	if err != nil {
		return nil, err
	}

	callbacks := append([]engine.Callback(nil), opts.Callbacks...)
	var recorder *metrics.Recorder
	if opts.Registerer != nil {
		recorder, err = metrics.NewRecorder(opts.Registerer)
		if err != nil {
			return nil, err
		}
		callbacks = append(callbacks, recorder.Callbacks()...)
	}

	orch := engine.New(pol, func(o *engine.Options) {
		o.Presence = net
		o.Callbacks = callbacks
		o.Logger = logger
	})

	var chainEngine *chain.Engine
	if len(cfg.Chain) > 0 && cfg.Settings.Processing != "" {
		chainEngine = chain.New(cfg.Chain, func(o *chain.Options) {
			o.TransferAmount = cfg.Settings.TransferAmount
			o.MinInputReserve = cfg.Settings.MinInputReserve
			o.MaxOutputStock = cfg.Settings.MaxOutputStock
			o.Callbacks = orch.Callbacks()
			o.Logger = logger
		})
	}

	r := runner.New(orch, net, cfg.Machines, cfg.Settings.Source, func(o *runner.Options) {
		o.Chain = chainEngine
		o.Processing = cfg.Settings.Processing
		o.Interval = cfg.Settings.TickInterval
		o.StatusStore = opts.StatusStore
		o.Recorder = recorder
		o.Logger = logger
	})

	logger.Info("Restock configured",
		"policy", pol.Name(),
		"machines", len(cfg.Machines),
		"chain_links", len(cfg.Chain),
		"source", cfg.Settings.Source,
	)

	return &Restock{
		cfg:          cfg,
		policy:       pol,
		orchestrator: orch,
		chain:        chainEngine,
		runner:       r,
		recorder:     recorder,
		statusStore:  opts.StatusStore,
	}, nil
}

// NewPolicy builds the policy selected by cfg.Settings.Policy.
func NewPolicy(cfg *config.Config, logger logging.Logger) (core.Policy, error) {
	withSettings := func(o *policy.Options) {
		o.TransferAmount = cfg.Settings.TransferAmount
		o.Seed = cfg.Settings.Seed
		o.Logger = logger
	}

	switch cfg.Settings.Policy {
	case config.PolicyWeighted, "":
		return policy.NewWeighted(cfg.Materials, cfg.TypeDefinitions(), withSettings), nil
	case config.PolicyUrgency:
		return policy.NewUrgency(cfg.Recipes(), cfg.StockTargets, withSettings), nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", config.ErrInvalidConfig, cfg.Settings.Policy)
	}
}

// Tick runs one chain phase and one distribution cycle.
func (r *Restock) Tick(ctx context.Context) (*runner.TickResult, error) {
	return r.runner.Tick(ctx)
}

// Run ticks on the configured interval until ctx is cancelled.
func (r *Restock) Run(ctx context.Context) error {
	return r.runner.Run(ctx)
}

// Status returns the last known status of every machine.
func (r *Restock) Status(ctx context.Context) (map[string]core.MachineStatus, error) {
	return r.statusStore.Load(ctx)
}

// Policy returns the active scheduling policy.
func (r *Restock) Policy() core.Policy { return r.policy }

// Orchestrator returns the distribution engine, e.g. to register callbacks.
func (r *Restock) Orchestrator() *engine.Orchestrator { return r.orchestrator }

// Chain returns the chain engine, or nil when no chain is configured.
func (r *Restock) Chain() *chain.Engine { return r.chain }

// Close releases the status store.
func (r *Restock) Close() error { return r.statusStore.Close() }
