package core

import "context"

// StatusStore persists the last known status of every machine across cycles.
// It is driver bookkeeping; the engine never reads it back.
type StatusStore interface {
	Save(ctx context.Context, cycleID string, states []MachineState) error
	Load(ctx context.Context) (map[string]MachineStatus, error)
	Close() error
}
