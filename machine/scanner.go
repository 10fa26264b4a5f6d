// Package machine classifies configured machines as empty or not by probing
// each machine's single input container.
package machine

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/inventory"
	"github.com/hupe1980/restock/logging"
)

// ErrNoContainers is returned when ScanAll is handed no container lookup at
// all and therefore cannot run.
var ErrNoContainers = errors.New("no container lookup")

// Options configures a Scanner.
type Options struct {
	// Presence checks whether a container reference is reachable. When nil a
	// reference is reachable if the container map holds it.
	Presence core.Presence
	// Logger receives one warning per unreachable or unreadable target.
	Logger logging.Logger
}

// Scanner probes machine input containers.
type Scanner struct {
	presence core.Presence
	logger   logging.Logger
}

// NewScanner creates a Scanner.
func NewScanner(optFns ...func(o *Options)) *Scanner {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scanner{
		presence: opts.Presence,
		logger:   logging.OrNoOp(opts.Logger),
	}
}

// ScanAll classifies every target in order. A target that cannot be reached
// or read is recorded as not empty and counted as a failure; the batch always
// continues. An error is returned only when the scan cannot run at all.
func (s *Scanner) ScanAll(ctx context.Context, targets []core.MachineConfig, containers map[string]core.Container) (core.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return core.ScanResult{}, fmt.Errorf("%w: %w", core.ErrScanFailed, err)
	}
	if containers == nil {
		return core.ScanResult{}, fmt.Errorf("%w: %w", core.ErrScanFailed, ErrNoContainers)
	}

	result := core.ScanResult{
		Results:  make([]core.MachineState, 0, len(targets)),
		EmptyIDs: []string{},
	}
	for _, target := range targets {
		state := core.MachineState{ID: target.ID, Type: target.Type, Container: target.Container}

		c, ok := containers[target.Container]
		if !ok || !s.reachable(ctx, target.Container) {
			s.logger.Warn("Machine unreachable", "machine", target.ID, "container", target.Container)
			result.Failures++
			result.Results = append(result.Results, state)
			continue
		}

		empty, err := inventory.IsEmpty(ctx, c)
		if err != nil {
			s.logger.Warn("Machine scan failed", "machine", target.ID, "container", target.Container, "error", err)
			result.Failures++
			result.Results = append(result.Results, state)
			continue
		}

		state.Reachable = true
		state.Empty = empty
		if empty {
			result.EmptyIDs = append(result.EmptyIDs, target.ID)
		}
		result.Results = append(result.Results, state)
	}
	return result, nil
}

func (s *Scanner) reachable(ctx context.Context, ref string) bool {
	if s.presence == nil {
		return true
	}
	return s.presence.IsPresent(ctx, ref)
}
