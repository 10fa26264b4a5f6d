// Package metrics exposes restock cycle activity as Prometheus collectors.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/restock/chain"
	"github.com/hupe1980/restock/engine"
)

const namespace = "restock"

// Values of the result label on restock_transfers_total.
const (
	// ResultSuccess labels a transfer that moved items.
	ResultSuccess = "success"
	// ResultFailure labels a transfer that failed or moved nothing.
	ResultFailure = "failure"
)

// CycleDurationBuckets spans fast in-process cycles up to slow networks.
var CycleDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Recorder owns the restock collectors. Each Recorder registers its own
// collectors, so tests can use a fresh registry.
type Recorder struct {
	cycles        prometheus.Counter
	transfers     *prometheus.CounterVec
	itemsMoved    *prometheus.CounterVec
	machinesEmpty prometheus.Gauge
	cycleDuration prometheus.Histogram
	chainSkips    *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg. A nil reg
// skips registration.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Number of completed distribution cycles.",
		}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Transfers attempted, by phase and result.",
		}, []string{"phase", "result"}),
		itemsMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_moved_total",
			Help:      "Units moved out of the source container, by item.",
		}, []string{"item"}),
		machinesEmpty: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "machines_empty",
			Help:      "Machines found empty by the latest scan.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of distribution cycles.",
			Buckets:   CycleDurationBuckets,
		}),
		chainSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_skips_total",
			Help:      "Chain links skipped, by reason.",
		}, []string{"reason"}),
	}
	if reg == nil {
		return r, nil
	}
	for _, c := range r.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *Recorder) collectors() []prometheus.Collector {
	return []prometheus.Collector{r.cycles, r.transfers, r.itemsMoved, r.machinesEmpty, r.cycleDuration, r.chainSkips}
}

// Callbacks returns engine callbacks feeding the recorder. Register them on
// both the orchestrator and the chain engine; the phase label tells them
// apart.
func (r *Recorder) Callbacks() []engine.Callback {
	return []engine.Callback{
		engine.NewFunctionCallback(engine.CallbackAfterTransfer, func(_ context.Context, c *engine.CallbackContext) error {
			r.transfers.WithLabelValues(c.Phase, ResultSuccess).Inc()
			if c.Assignment != nil && c.Outcome != nil {
				r.itemsMoved.WithLabelValues(c.Assignment.Item).Add(float64(c.Outcome.Transferred))
			}
			return nil
		}),
		engine.NewFunctionCallback(engine.CallbackTransferFailed, func(_ context.Context, c *engine.CallbackContext) error {
			r.transfers.WithLabelValues(c.Phase, ResultFailure).Inc()
			return nil
		}),
		engine.NewFunctionCallback(engine.CallbackAfterCycle, func(_ context.Context, c *engine.CallbackContext) error {
			r.cycles.Inc()
			if c.Result != nil {
				r.machinesEmpty.Set(float64(c.Result.EmptyCount))
				r.cycleDuration.Observe(c.Result.Duration.Seconds())
			}
			return nil
		}),
	}
}

// RecordChain counts the skip reasons of a chain walk.
func (r *Recorder) RecordChain(res *chain.Result) {
	if res == nil {
		return
	}
	for _, l := range res.Links {
		if l.Skip != nil {
			r.chainSkips.WithLabelValues(string(l.Skip.Reason)).Inc()
		}
	}
}
