package statestore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/hupe1980/restock/core"
)

// InMemoryStore is a volatile StatusStore keeping statuses in a process local
// map. It is safe for concurrent access. Load returns a copy.
type InMemoryStore struct {
	mu       sync.RWMutex
	statuses map[string]core.MachineStatus
	now      func() time.Time
}

var _ core.StatusStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory status store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		statuses: make(map[string]core.MachineStatus),
		now:      time.Now,
	}
}

// Save upserts one status per state.
func (s *InMemoryStore) Save(_ context.Context, cycleID string, states []core.MachineState) error {
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range states {
		s.statuses[st.ID] = toStatus(cycleID, st, now)
	}
	return nil
}

// Load returns every stored status keyed by machine id.
func (s *InMemoryStore) Load(_ context.Context) (map[string]core.MachineStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.statuses), nil
}

// Close implements core.StatusStore.
func (s *InMemoryStore) Close() error { return nil }

func toStatus(cycleID string, st core.MachineState, now time.Time) core.MachineStatus {
	return core.MachineStatus{
		MachineID: st.ID,
		Type:      st.Type,
		Container: st.Container,
		Empty:     st.Empty,
		Reachable: st.Reachable,
		CycleID:   cycleID,
		UpdatedAt: now,
	}
}
