package policy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cobble = "minecraft:cobblestone"
	dirt   = "minecraft:dirt"
)

func hammerRecipes() map[string][]core.Recipe {
	return map[string][]core.Recipe{
		"hammer": {
			{Input: gravel, Output: dirt},
			{Input: cobble, Output: gravel},
		},
	}
}

func hammers(n int) []core.MachineState {
	out := make([]core.MachineState, n)
	for i := range out {
		id := "hammer_" + string(rune('a'+i))
		out[i] = core.MachineState{ID: id, Type: "hammer", Container: id + "_in", Empty: true, Reachable: true}
	}
	return out
}

func TestUrgency_PrefersFurthestBelowTarget(t *testing.T) {
	targets := []core.StockTarget{
		{Item: gravel, TargetCount: 8192, Weight: 1},
		{Item: dirt, TargetCount: 8192, Weight: 1},
	}
	p := NewUrgency(hammerRecipes(), targets)
	inv := testutil.NewInventoryBuilder().
		Stacks(cobble, 500, 64).
		Stacks(gravel, 100, 64).
		Stacks(dirt, 8000, 64).
		Build()

	assert.Greater(t, p.Score(gravel, 100), p.Score(dirt, 8000))

	got := p.Schedule(hammers(1), inv)
	want := []core.Assignment{{MachineID: "hammer_a", Target: "hammer_a_in", Item: cobble, SourceSlot: 1, Amount: 64}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Schedule() mismatch (-want +got):\n%s", diff)
	}
}

func TestUrgency_Score(t *testing.T) {
	p := NewUrgency(nil, []core.StockTarget{{Item: gravel, TargetCount: 1000, Weight: 2}})

	assert.InDelta(t, 2.0, p.Score(gravel, 0), 1e-9)
	assert.InDelta(t, 1.0, p.Score(gravel, 500), 1e-9)
	assert.Zero(t, p.Score(gravel, 1500))
	assert.Zero(t, p.Score(dirt, 0), "no target scores zero")
}

func TestUrgency_TieBreaksByOutputAscending(t *testing.T) {
	recipes := map[string][]core.Recipe{"hammer": {
		{Input: cobble, Output: gravel},
		{Input: gravel, Output: dirt},
	}}
	p := NewUrgency(recipes, []core.StockTarget{
		{Item: gravel, TargetCount: 128, Weight: 2},
		{Item: dirt, TargetCount: 128, Weight: 1},
	})
	inv := testutil.NewInventoryBuilder().Stacks(cobble, 640, 64).Stacks(gravel, 64, 64).Build()

	// gravel: (128-64)/128*2 = 1.0, dirt: 128/128*1 = 1.0
	require.Equal(t, p.Score(gravel, 64), p.Score(dirt, 0))

	got := p.Schedule(hammers(1), inv)
	require.Len(t, got, 1)
	assert.Equal(t, gravel, got[0].Item, "dirt sorts before gravel, so the gravel->dirt recipe wins")
}

func TestUrgency_RespectsInputReserve(t *testing.T) {
	targets := []core.StockTarget{
		{Item: gravel, TargetCount: 8192, Weight: 1},
		{Item: dirt, TargetCount: 8192, Weight: 1},
		{Item: cobble, TargetCount: 1, Weight: 0, MinReserve: 500},
	}
	p := NewUrgency(hammerRecipes(), targets)
	// cobble 540 < 500 + 64, so the gravel recipe falls through to dirt.
	inv := testutil.NewInventoryBuilder().Stacks(cobble, 540, 64).Stacks(gravel, 128, 64).Stacks(dirt, 4096, 64).Build()

	got := p.Schedule(hammers(1), inv)
	require.Len(t, got, 1)
	assert.Equal(t, gravel, got[0].Item)
}

func TestUrgency_NoAssignmentWhenSaturatedOrUntargeted(t *testing.T) {
	inv := testutil.NewInventoryBuilder().Stacks(cobble, 640, 64).Stacks(gravel, 640, 64).Build()

	untargeted := NewUrgency(hammerRecipes(), nil)
	assert.Empty(t, untargeted.Schedule(hammers(2), inv))

	saturated := NewUrgency(hammerRecipes(), []core.StockTarget{{Item: gravel, TargetCount: 100, Weight: 1}})
	assert.Empty(t, saturated.Schedule(hammers(1), inv))

	unknown := NewUrgency(hammerRecipes(), []core.StockTarget{{Item: gravel, TargetCount: 100000, Weight: 1}})
	assert.Empty(t, unknown.Schedule([]core.MachineState{{ID: "f", Type: "furnace", Empty: true}}, inv))
}

func TestUrgency_RunningInventoryPreventsOverCommit(t *testing.T) {
	targets := []core.StockTarget{{Item: gravel, TargetCount: 8192, Weight: 1}}
	p := NewUrgency(hammerRecipes(), targets)
	inv := testutil.NewInventoryBuilder().Stacks(cobble, 192, 64).Build()
	before := inv.Clone()

	got := p.Schedule(hammers(5), inv)
	require.Len(t, got, 3)
	slots := []int{got[0].SourceSlot, got[1].SourceSlot, got[2].SourceSlot}
	assert.Equal(t, []int{1, 2, 3}, slots)
	assert.True(t, before.Equal(inv))
	assert.Equal(t, "urgency", p.Name())
}
