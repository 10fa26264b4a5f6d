package policy

import (
	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/logging"
)

// Weighted distributes materials to empty machines by weighted random choice
// among the materials the machine's type accepts and the store can spare.
type Weighted struct {
	materials map[string]core.MaterialDefinition
	types     map[string]core.MachineTypeDefinition
	amount    int
	rng       *lockedRand
	logger    logging.Logger
}

var _ core.Policy = (*Weighted)(nil)

// NewWeighted creates the distribution policy.
func NewWeighted(materials []core.MaterialDefinition, types []core.MachineTypeDefinition, optFns ...func(o *Options)) *Weighted {
	opts := buildOptions(optFns)

	p := &Weighted{
		materials: make(map[string]core.MaterialDefinition, len(materials)),
		types:     make(map[string]core.MachineTypeDefinition, len(types)),
		amount:    opts.TransferAmount,
		rng:       &lockedRand{rng: opts.random()},
		logger:    opts.Logger,
	}
	for _, m := range materials {
		p.materials[m.ID] = m
	}
	for _, t := range types {
		p.types[t.ID] = t
	}
	return p
}

// Name implements core.Policy.
func (p *Weighted) Name() string { return "weighted" }

// Schedule implements core.Policy.
func (p *Weighted) Schedule(machines []core.MachineState, inv core.Inventory) []core.Assignment {
	local := inv.Clone()
	var out []core.Assignment

	for _, m := range machines {
		if !m.Empty {
			continue
		}
		mt, ok := p.types[m.Type]
		if !ok {
			p.logger.Warn("Unknown machine type", "machine", m.ID, "type", m.Type, "error", core.ErrUnknownType)
			continue
		}

		candidates := p.candidates(mt, local)
		choice, ok := p.pick(candidates)
		if !ok {
			p.logger.Debug("No material available", "machine", m.ID, "type", m.Type)
			continue
		}

		a, ok := assign(local, m, choice.Item, p.amount)
		if !ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

// candidates returns, in declaration order, the supported materials whose
// running stock covers minStock plus one transfer.
func (p *Weighted) candidates(mt core.MachineTypeDefinition, local core.Inventory) []core.MaterialDefinition {
	var out []core.MaterialDefinition
	for _, id := range mt.SupportedMaterialIDs {
		def, ok := p.materials[id]
		if !ok {
			p.logger.Warn("Unknown material", "type", mt.ID, "material", id, "error", core.ErrUnknownMaterial)
			continue
		}
		if local.Total(def.Item) >= def.MinStock+p.amount {
			out = append(out, def)
		}
	}
	return out
}

// pick selects one candidate. A single candidate is taken without a draw.
// Otherwise zero weight candidates drop out and a uniform draw in
// [0, totalWeight) is walked cumulatively in declaration order.
func (p *Weighted) pick(candidates []core.MaterialDefinition) (core.MaterialDefinition, bool) {
	switch len(candidates) {
	case 0:
		return core.MaterialDefinition{}, false
	case 1:
		return candidates[0], true
	}

	weighted := make([]core.MaterialDefinition, 0, len(candidates))
	total := 0.0
	for _, c := range candidates {
		if c.Weight > 0 {
			weighted = append(weighted, c)
			total += c.Weight
		}
	}
	switch len(weighted) {
	case 0:
		return core.MaterialDefinition{}, false
	case 1:
		return weighted[0], true
	}

	r := p.rng.Float64() * total
	cumulative := 0.0
	for _, c := range weighted {
		cumulative += c.Weight
		if r < cumulative {
			return c, true
		}
	}
	// Floating point rounding can leave r at the boundary.
	return weighted[len(weighted)-1], true
}
