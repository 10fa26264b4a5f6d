package container

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/restock/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChest_MoveStacksThenFillsEmptySlots(t *testing.T) {
	ctx := context.Background()
	net := NewNetwork()
	src := net.AddChest("store", 4)
	dst := net.AddChest("crusher_1", 2)

	src.Put(1, "minecraft:sand", 64)
	dst.Put(1, "minecraft:sand", 40)

	moved, err := src.Move(ctx, "crusher_1", 1, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, moved)

	slots, err := dst.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.ItemStack{Item: "minecraft:sand", Count: 64}, slots[1])
	assert.Equal(t, core.ItemStack{Item: "minecraft:sand", Count: 40}, slots[2])

	_, ok, err := src.Peek(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChest_MoveIntoFullTargetMovesNothing(t *testing.T) {
	ctx := context.Background()
	net := NewNetwork()
	src := net.AddChest("store", 2)
	dst := net.AddChest("buffer", 1)
	src.Put(1, "minecraft:sand", 10)
	dst.Put(1, "minecraft:gravel", 64)

	moved, err := src.Move(ctx, "buffer", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Equal(t, 10, src.Count("minecraft:sand"))
}

func TestChest_MovePartialWhenSlotHoldsLess(t *testing.T) {
	ctx := context.Background()
	net := NewNetwork()
	src := net.AddChest("store", 2)
	net.AddChest("m", 2)
	src.Put(2, "minecraft:clay", 12)

	moved, err := src.Move(ctx, "m", 2, 64)
	require.NoError(t, err)
	assert.Equal(t, 12, moved)
}

func TestChest_MoveIfMatch(t *testing.T) {
	ctx := context.Background()
	net := NewNetwork()
	src := net.AddChest("store", 2)
	net.AddChest("m", 2)
	src.Put(1, "minecraft:gravel", 32)

	found, moved, err := src.MoveIfMatch(ctx, "m", 1, "minecraft:sand", 32)
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Equal(t, "minecraft:gravel", found.Item)
	assert.Equal(t, 32, src.Count("minecraft:gravel"))

	found, moved, err = src.MoveIfMatch(ctx, "m", 1, "minecraft:gravel", 32)
	require.NoError(t, err)
	assert.Equal(t, 32, moved)
	assert.Equal(t, "minecraft:gravel", found.Item)
}

func TestNetwork_DetachMakesCallsFail(t *testing.T) {
	ctx := context.Background()
	net := NewNetwork()
	c := net.AddChest("m", 1)

	assert.True(t, net.IsPresent(ctx, "m"))
	net.Detach("m")
	assert.False(t, net.IsPresent(ctx, "m"))
	assert.False(t, net.IsPresent(ctx, "missing"))

	_, err := c.List(ctx)
	assert.ErrorIs(t, err, ErrNotAttached)

	net.Attach("m")
	_, err = c.List(ctx)
	assert.NoError(t, err)
}

func TestChest_InsertAndTake(t *testing.T) {
	net := NewNetwork(func(o *NetworkOptions) { o.StackLimit = 16 })
	c := net.AddChest("store", 2)

	left := c.Insert("minecraft:dirt", 40)
	assert.Equal(t, 8, left)
	assert.Equal(t, 32, c.Count("minecraft:dirt"))

	assert.Equal(t, 20, c.Take("minecraft:dirt", 20))
	assert.Equal(t, 12, c.Count("minecraft:dirt"))
	assert.Equal(t, []string{"store"}, net.Names())
}

type panicContainer struct{ core.Container }

func (panicContainer) Name() string { return "boom" }
func (panicContainer) List(context.Context) (map[int]core.ItemStack, error) {
	panic("peripheral vanished")
}
func (panicContainer) Peek(context.Context, int) (core.ItemStack, bool, error) {
	return core.ItemStack{}, false, errors.New("timeout")
}

func TestSafe_ConvertsPanicsAndErrors(t *testing.T) {
	ctx := context.Background()
	c := Safe(panicContainer{})

	_, err := c.List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDisconnected)
	assert.Contains(t, err.Error(), "peripheral vanished")

	_, _, err = c.Peek(ctx, 1)
	assert.ErrorIs(t, err, core.ErrDisconnected)

	vm, ok := c.(core.VerifiedMover)
	require.True(t, ok)
	_, moved, err := vm.MoveIfMatch(ctx, "x", 1, "a", 1)
	assert.Zero(t, moved)
	assert.ErrorIs(t, err, core.ErrDisconnected)

	assert.Same(t, c, Safe(c))
}

func TestSafe_PassesThroughHealthyChest(t *testing.T) {
	ctx := context.Background()
	net := NewNetwork()
	src := net.AddChest("store", 1)
	net.AddChest("m", 1)
	src.Put(1, "minecraft:sand", 5)

	safe := SafeAll(net.Containers())
	vm := safe["store"].(core.VerifiedMover)
	_, moved, err := vm.MoveIfMatch(ctx, "m", 1, "minecraft:sand", 64)
	require.NoError(t, err)
	assert.Equal(t, 5, moved)
}
