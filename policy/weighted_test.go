package policy

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sand   = "minecraft:sand"
	gravel = "minecraft:gravel"
	clay   = "minecraft:clay"
)

func scenarioMaterials() []core.MaterialDefinition {
	return []core.MaterialDefinition{
		{ID: "sand", Item: sand, MinStock: 128, Weight: 3},
		{ID: "gravel", Item: gravel, MinStock: 64, Weight: 1},
	}
}

func sieveType() []core.MachineTypeDefinition {
	return []core.MachineTypeDefinition{{ID: "sieve", SupportedMaterialIDs: []string{"sand", "gravel"}}}
}

func emptySieves(n int) []core.MachineState {
	out := make([]core.MachineState, n)
	for i := range out {
		id := "sieve_" + string(rune('a'+i))
		out[i] = core.MachineState{ID: id, Type: "sieve", Container: id + "_in", Empty: true, Reachable: true}
	}
	return out
}

func withSeed(seed uint64) func(o *Options) {
	return func(o *Options) { o.Seed = seed }
}

func TestWeighted_FairnessConvergesToWeights(t *testing.T) {
	p := NewWeighted(scenarioMaterials(), sieveType(), withSeed(42))
	inv := testutil.NewInventoryBuilder().Stacks(sand, 500, 64).Stacks(gravel, 200, 64).Build()
	machine := emptySieves(1)

	counts := map[string]int{}
	const trials = 10000
	for range trials {
		got := p.Schedule(machine, inv)
		require.Len(t, got, 1)
		counts[got[0].Item]++
	}

	require.NotZero(t, counts[gravel])
	ratio := float64(counts[sand]) / float64(counts[gravel])
	assert.InDelta(t, 3.0, ratio, 0.3, "sand=%d gravel=%d", counts[sand], counts[gravel])
	assert.InDelta(t, 0.75, float64(counts[sand])/trials, 0.03)
}

func TestWeighted_MinimumStockExcludesHeavyMaterial(t *testing.T) {
	materials := []core.MaterialDefinition{
		{ID: "sand", Item: sand, MinStock: 128, Weight: 1000},
		{ID: "gravel", Item: gravel, MinStock: 0, Weight: 1},
	}
	p := NewWeighted(materials, sieveType(), withSeed(7))
	// 191 < 128 + 64
	inv := testutil.NewInventoryBuilder().Stacks(sand, 191, 64).Stacks(gravel, 640, 64).Build()

	for range 500 {
		for _, a := range p.Schedule(emptySieves(1), inv) {
			assert.Equal(t, gravel, a.Item)
		}
	}
}

func TestWeighted_SingleCandidateIsDeterministic(t *testing.T) {
	p := NewWeighted(scenarioMaterials(), sieveType(), func(o *Options) {
		o.Rand = rand.New(rand.NewPCG(1, 2))
	})
	inv := testutil.NewInventoryBuilder().Stack(gravel, 5, 64).Stack(gravel, 9, 64).Build()

	got := p.Schedule(emptySieves(1), inv)
	want := []core.Assignment{{MachineID: "sieve_a", Target: "sieve_a_in", Item: gravel, SourceSlot: 5, Amount: 64}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Schedule() mismatch (-want +got):\n%s", diff)
	}
}

func TestWeighted_ZeroWeightNeverWinsADraw(t *testing.T) {
	materials := []core.MaterialDefinition{
		{ID: "sand", Item: sand, Weight: 0},
		{ID: "gravel", Item: gravel, Weight: 2},
	}
	p := NewWeighted(materials, sieveType(), withSeed(3))
	inv := testutil.NewInventoryBuilder().Stacks(sand, 640, 64).Stacks(gravel, 640, 64).Build()

	for range 200 {
		got := p.Schedule(emptySieves(1), inv)
		require.Len(t, got, 1)
		assert.Equal(t, gravel, got[0].Item)
	}

	// Alone, a zero weight material is still delivered.
	only := testutil.NewInventoryBuilder().Stacks(sand, 640, 64).Build()
	got := p.Schedule(emptySieves(1), only)
	require.Len(t, got, 1)
	assert.Equal(t, sand, got[0].Item)
}

func TestWeighted_ConservationAcrossOnePass(t *testing.T) {
	materials := []core.MaterialDefinition{
		{ID: "sand", Item: sand, Weight: 1},
		{ID: "gravel", Item: gravel, Weight: 1},
		{ID: "clay", Item: clay, MinStock: 32, Weight: 5},
	}
	types := []core.MachineTypeDefinition{{ID: "sieve", SupportedMaterialIDs: []string{"sand", "gravel", "clay"}}}
	p := NewWeighted(materials, types, withSeed(99))
	inv := testutil.NewInventoryBuilder().
		Stacks(sand, 150, 64).
		Stacks(gravel, 64, 64).
		Stacks(clay, 100, 64).
		Build()

	got := p.Schedule(emptySieves(12), inv)

	moved := map[string]int{}
	for _, a := range got {
		moved[a.Item] += a.Amount
		assert.Positive(t, a.Amount)
	}
	for item, n := range moved {
		assert.LessOrEqual(t, n, inv.Total(item), item)
	}
	assert.LessOrEqual(t, moved[clay], 100-32)
}

func TestWeighted_AmountCappedByFirstSlot(t *testing.T) {
	p := NewWeighted(
		[]core.MaterialDefinition{{ID: "sand", Item: sand, Weight: 1}},
		[]core.MachineTypeDefinition{{ID: "sieve", SupportedMaterialIDs: []string{"sand"}}},
		withSeed(1),
	)
	inv := testutil.NewInventoryBuilder().Stack(sand, 1, 20).Stack(sand, 2, 64).Stack(sand, 3, 64).Build()

	got := p.Schedule(emptySieves(2), inv)

	want := []core.Assignment{
		{MachineID: "sieve_a", Target: "sieve_a_in", Item: sand, SourceSlot: 1, Amount: 20},
		{MachineID: "sieve_b", Target: "sieve_b_in", Item: sand, SourceSlot: 2, Amount: 64},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("assignments mismatch (-want +got):\n%s", diff)
	}
}

func TestWeighted_DoesNotMutateInventory(t *testing.T) {
	p := NewWeighted(scenarioMaterials(), sieveType(), withSeed(5))
	inv := testutil.NewInventoryBuilder().Stacks(sand, 500, 64).Stacks(gravel, 200, 64).Build()
	before := inv.Clone()

	got := p.Schedule(emptySieves(4), inv)
	require.NotEmpty(t, got)
	assert.True(t, before.Equal(inv))
}

func TestWeighted_ReproducibleWithSeed(t *testing.T) {
	inv := testutil.NewInventoryBuilder().Stacks(sand, 1000, 64).Stacks(gravel, 1000, 64).Build()
	a := NewWeighted(scenarioMaterials(), sieveType(), withSeed(1234)).Schedule(emptySieves(8), inv)
	b := NewWeighted(scenarioMaterials(), sieveType(), withSeed(1234)).Schedule(emptySieves(8), inv)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("seeded schedules differ (-first +second):\n%s", diff)
	}
}

func TestWeighted_SkipsUnknownTypesMaterialsAndFullMachines(t *testing.T) {
	types := []core.MachineTypeDefinition{{ID: "sieve", SupportedMaterialIDs: []string{"nope", "gravel"}}}
	p := NewWeighted(scenarioMaterials(), types, withSeed(1))
	inv := testutil.NewInventoryBuilder().Stacks(gravel, 640, 64).Build()

	machines := []core.MachineState{
		{ID: "x", Type: "furnace", Container: "x_in", Empty: true},
		{ID: "y", Type: "sieve", Container: "y_in", Empty: false},
		{ID: "z", Type: "sieve", Container: "z_in", Empty: true},
	}
	got := p.Schedule(machines, inv)
	require.Len(t, got, 1)
	assert.Equal(t, "z", got[0].MachineID)
	assert.Equal(t, "weighted", p.Name())
}

func TestWeighted_EmptyInventoryYieldsNothing(t *testing.T) {
	p := NewWeighted(scenarioMaterials(), sieveType())
	assert.Empty(t, p.Schedule(emptySieves(3), nil))
}

func TestOptions_RandomSource(t *testing.T) {
	custom := rand.New(rand.NewPCG(3, 4))
	assert.Same(t, custom, Options{Rand: custom, Seed: 9}.random())

	a, b := Options{Seed: 11}.random(), Options{Seed: 11}.random()
	assert.Equal(t, a.Uint64(), b.Uint64(), "equal seeds give equal streams")

	assert.Nil(t, buildOptions(nil).Rand, "building options allocates no random source")
}
