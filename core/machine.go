package core

import "time"

// MachineConfig is one configured consumer: a machine of some type whose
// single input container is addressed by Container.
type MachineConfig struct {
	ID        string `json:"id" yaml:"id"`
	Type      string `json:"type" yaml:"type"`
	Container string `json:"container" yaml:"container"`
}

// MachineState is the result of scanning one machine. It is recreated every
// scan and never outlives a cycle inside the engine.
type MachineState struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Container string `json:"container"`
	Empty     bool   `json:"empty"`
	// Reachable is false when the presence check failed; Empty is then false
	// so that nothing is pushed into a container we cannot see.
	Reachable bool `json:"reachable"`
}

// ScanResult aggregates a batch scan.
type ScanResult struct {
	Results  []MachineState `json:"results"`
	EmptyIDs []string       `json:"empty_ids"`
	// Failures counts targets that were unreachable or whose read failed.
	Failures int `json:"failures"`
}

// Empty returns the states with Empty set, in scan order.
func (r ScanResult) Empty() []MachineState {
	out := make([]MachineState, 0, len(r.EmptyIDs))
	for _, st := range r.Results {
		if st.Empty {
			out = append(out, st)
		}
	}
	return out
}

// MachineStatus is the persisted "last known status" of a machine, kept by
// the driver for display and bookkeeping.
type MachineStatus struct {
	MachineID string    `json:"machine_id"`
	Type      string    `json:"type"`
	Container string    `json:"container"`
	Empty     bool      `json:"empty"`
	Reachable bool      `json:"reachable"`
	CycleID   string    `json:"cycle_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
