// Package policy implements the scheduling policies that turn machine states
// and an inventory snapshot into transfer assignments.
//
// Policies never mutate the snapshot they are given. Each Schedule call works
// on a private clone so that an assignment made for one machine reduces the
// stock visible to the next machine in the same pass.
package policy

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/logging"
)

// DefaultTransferAmount is one full stack.
const DefaultTransferAmount = 64

// Options configures a policy.
type Options struct {
	// TransferAmount is the number of units requested per assignment.
	TransferAmount int
	// Seed seeds the random source when Rand is nil. Zero seeds from the
	// clock. Urgency is deterministic and ignores it.
	Seed uint64
	// Rand overrides the random source. Urgency ignores it.
	Rand *rand.Rand
	Logger logging.Logger
}

func buildOptions(optFns []func(o *Options)) Options {
	opts := Options{TransferAmount: DefaultTransferAmount}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.TransferAmount <= 0 {
		opts.TransferAmount = DefaultTransferAmount
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return opts
}

// random returns opts.Rand, or a PCG seeded from opts.Seed.
func (opts Options) random() *rand.Rand {
	if opts.Rand != nil {
		return opts.Rand
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, 0))
}

// lockedRand serialises access to a *rand.Rand, which is not safe for
// concurrent use.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

// assign emits an assignment for item out of its first slot and consumes it
// from local. The amount never exceeds what that slot holds, so the local
// running copy stays exact.
func assign(local core.Inventory, m core.MachineState, item string, amount int) (core.Assignment, bool) {
	loc, ok := local.FirstSlot(item)
	if !ok {
		return core.Assignment{}, false
	}
	amount = min(amount, loc.Count)
	local.Consume(item, loc.Slot, amount)
	return core.Assignment{
		MachineID:  m.ID,
		Target:     m.Container,
		Item:       item,
		SourceSlot: loc.Slot,
		Amount:     amount,
	}, true
}
