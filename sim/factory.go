// Package sim simulates the out-of-process actors around restock: machines
// consuming their input and the processing mechanism turning buffered chain
// inputs into outputs delivered back to the store.
//
// It exists for the example program and end-to-end tests. The engine never
// depends on it.
package sim

import (
	"context"
	"fmt"
	"sort"

	"github.com/hupe1980/restock/container"
	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/logging"
)

// Options configures a Factory.
type Options struct {
	// Processing names the processing buffer chest. Empty disables processing.
	Processing string
	// Links maps buffered inputs to outputs.
	Links []core.ChainLink
	// Yields maps a machine input item to the item it returns to the store.
	Yields map[string]string
	// DrainPerStep is how many units each machine consumes per step.
	DrainPerStep int
	// ProcessPerStep is how many units of each input the buffer converts per
	// step.
	ProcessPerStep int
	Logger         logging.Logger
}

// Report describes one Step.
type Report struct {
	Consumed map[string]int
	Produced map[string]int
	// Overflow counts produced units the store had no room for.
	Overflow int
}

// Factory mutates chests on a container.Network the way the physical world
// would between two ticks.
type Factory struct {
	net      *container.Network
	source   string
	machines []core.MachineConfig
	opts     Options
	outputs  map[string]string
}

// NewFactory creates a simulation around the source chest and machines.
func NewFactory(net *container.Network, source string, machines []core.MachineConfig, optFns ...func(o *Options)) *Factory {
	opts := Options{DrainPerStep: 16, ProcessPerStep: 64}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	outputs := make(map[string]string, len(opts.Links))
	for _, l := range opts.Links {
		outputs[l.Input] = l.Output
	}
	return &Factory{
		net:      net,
		source:   source,
		machines: append([]core.MachineConfig(nil), machines...),
		opts:     opts,
		outputs:  outputs,
	}
}

// Step advances the simulation by one tick.
func (f *Factory) Step(ctx context.Context) (Report, error) {
	rep := Report{Consumed: map[string]int{}, Produced: map[string]int{}}

	store, ok := f.net.Chest(f.source)
	if !ok {
		return rep, fmt.Errorf("source %q: %w", f.source, container.ErrNotAttached)
	}

	for _, m := range f.machines {
		in, ok := f.net.Chest(m.Container)
		if !ok || !f.net.IsPresent(ctx, m.Container) {
			continue
		}
		items, err := itemsIn(ctx, in)
		if err != nil {
			return rep, err
		}
		budget := f.opts.DrainPerStep
		for _, item := range items {
			if budget <= 0 {
				break
			}
			n := in.Take(item, budget)
			budget -= n
			rep.Consumed[item] += n
			if out, ok := f.opts.Yields[item]; ok && n > 0 {
				rep.Overflow += store.Insert(out, n)
				rep.Produced[out] += n
			}
		}
	}

	if f.opts.Processing != "" {
		buf, ok := f.net.Chest(f.opts.Processing)
		if ok && f.net.IsPresent(ctx, f.opts.Processing) {
			items, err := itemsIn(ctx, buf)
			if err != nil {
				return rep, err
			}
			for _, item := range items {
				out, ok := f.outputs[item]
				if !ok {
					continue
				}
				n := buf.Take(item, f.opts.ProcessPerStep)
				rep.Consumed[item] += n
				rep.Produced[out] += n
				rep.Overflow += store.Insert(out, n)
			}
		}
	}

	if rep.Overflow > 0 {
		f.opts.Logger.Warn("Store overflow", "units", rep.Overflow)
	}
	return rep, nil
}

func itemsIn(ctx context.Context, c *container.Chest) ([]string, error) {
	slots, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var items []string
	for _, st := range slots {
		if !st.IsEmpty() && !seen[st.Item] {
			seen[st.Item] = true
			items = append(items, st.Item)
		}
	}
	sort.Strings(items)
	return items, nil
}
