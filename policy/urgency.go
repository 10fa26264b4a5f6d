package policy

import (
	"sort"

	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/logging"
)

// Urgency feeds each empty machine the input of the recipe whose output is
// furthest below its stock target, scaled by the target's weight.
type Urgency struct {
	recipes map[string][]core.Recipe
	targets map[string]core.StockTarget
	amount  int
	logger  logging.Logger
}

var _ core.Policy = (*Urgency)(nil)

// NewUrgency creates the production policy. recipes is keyed by machine type.
func NewUrgency(recipes map[string][]core.Recipe, targets []core.StockTarget, optFns ...func(o *Options)) *Urgency {
	opts := buildOptions(optFns)

	p := &Urgency{
		recipes: make(map[string][]core.Recipe, len(recipes)),
		targets: make(map[string]core.StockTarget, len(targets)),
		amount:  opts.TransferAmount,
		logger:  opts.Logger,
	}
	for typ, rs := range recipes {
		p.recipes[typ] = append([]core.Recipe(nil), rs...)
	}
	for _, t := range targets {
		p.targets[t.Item] = t
	}
	return p
}

// Name implements core.Policy.
func (p *Urgency) Name() string { return "urgency" }

// Score returns the urgency of producing item given the current stock:
// max(0, (target-current)/target) * weight. Items without a target score 0.
func (p *Urgency) Score(item string, current int) float64 {
	t, ok := p.targets[item]
	if !ok || t.TargetCount <= 0 {
		return 0
	}
	deficit := float64(t.TargetCount-current) / float64(t.TargetCount)
	return max(0, deficit) * t.Weight
}

type scoredRecipe struct {
	core.Recipe
	urgency float64
}

// Schedule implements core.Policy.
func (p *Urgency) Schedule(machines []core.MachineState, inv core.Inventory) []core.Assignment {
	local := inv.Clone()
	var out []core.Assignment

	for _, m := range machines {
		if !m.Empty {
			continue
		}
		recipes := p.recipes[m.Type]
		if len(recipes) == 0 {
			p.logger.Debug("No recipes for machine type", "machine", m.ID, "type", m.Type)
			continue
		}

		ranked := make([]scoredRecipe, 0, len(recipes))
		for _, r := range recipes {
			ranked = append(ranked, scoredRecipe{Recipe: r, urgency: p.Score(r.Output, local.Total(r.Output))})
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].urgency != ranked[j].urgency {
				return ranked[i].urgency > ranked[j].urgency
			}
			return ranked[i].Output < ranked[j].Output
		})

		for _, r := range ranked {
			if r.urgency <= 0 {
				break
			}
			if local.Total(r.Input) < p.targets[r.Input].MinReserve+p.amount {
				continue
			}
			a, ok := assign(local, m, r.Input, p.amount)
			if !ok {
				continue
			}
			out = append(out, a)
			break
		}
	}
	return out
}
