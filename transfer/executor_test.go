package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/restock/container"
	"github.com/hupe1980/restock/core"
	"github.com/hupe1980/restock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecute_MovesVerifiedStack(t *testing.T) {
	ctx := context.Background()
	net := container.NewNetwork()
	src := net.AddChest("store", 4)
	net.AddChest("crusher_1", 1)
	src.Put(2, "minecraft:sand", 64)

	out, err := NewExecutor().Execute(ctx, src, "crusher_1", 2, "minecraft:sand", 64)
	require.NoError(t, err)
	assert.Equal(t, core.TransferOutcome{Transferred: 64, SourceSlot: 2}, out)
	assert.Zero(t, src.Count("minecraft:sand"))
}

func TestExecute_ReportsActualCountOnPartialSlot(t *testing.T) {
	ctx := context.Background()
	net := container.NewNetwork()
	src := net.AddChest("store", 4)
	net.AddChest("m", 1)
	src.Put(1, "minecraft:sand", 20)

	out, err := NewExecutor().Execute(ctx, src, "m", 1, "minecraft:sand", 64)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Transferred)
}

func TestExecute_RaceGuardTripsOnExternalChange(t *testing.T) {
	ctx := context.Background()
	net := container.NewNetwork()
	src := net.AddChest("store", 4)
	dst := net.AddChest("m", 1)
	src.Put(1, "minecraft:sand", 64)

	// An external actor swaps the slot between scheduling and execution.
	src.Put(1, "minecraft:gravel", 10)

	_, err := NewExecutor().Execute(ctx, src, "m", 1, "minecraft:sand", 64)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSlotChanged)

	var sc *core.SlotChangedError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, "minecraft:gravel", sc.Actual)
	assert.Equal(t, 10, src.Count("minecraft:gravel"))
	assert.Zero(t, dst.Count("minecraft:gravel"))
}

func TestExecute_RaceGuardOnDrainedSlot(t *testing.T) {
	src := testutil.NewMockContainer("store")
	src.On("Peek", mock.Anything, 3).Return(core.ItemStack{}, false, nil)

	_, err := NewExecutor().Execute(context.Background(), src, "m", 3, "minecraft:sand", 64)
	var sc *core.SlotChangedError
	require.ErrorAs(t, err, &sc)
	assert.Empty(t, sc.Actual)
	src.AssertNotCalled(t, "Move", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_ZeroMovedIsTransferFailed(t *testing.T) {
	src := testutil.NewMockContainer("store")
	src.On("Peek", mock.Anything, 1).Return(core.ItemStack{Item: "minecraft:sand", Count: 64}, true, nil)
	src.On("Move", mock.Anything, "m", 1, 64).Return(0, nil)

	out, err := NewExecutor().Execute(context.Background(), src, "m", 1, "minecraft:sand", 64)
	assert.Zero(t, out)
	assert.ErrorIs(t, err, core.ErrTransferFailed)

	var tf *core.TransferFailedError
	require.ErrorAs(t, err, &tf)
	assert.Equal(t, core.ReasonNoItemsTransferred, tf.Reason)
	src.AssertExpectations(t)
}

func TestExecute_TransportFailureIsDisconnected(t *testing.T) {
	src := testutil.NewMockContainer("store")
	src.On("Peek", mock.Anything, 1).Return(core.ItemStack{Item: "minecraft:sand", Count: 64}, true, nil)
	src.On("Move", mock.Anything, "m", 1, 64).Return(0, errors.New("wire cut"))

	_, err := NewExecutor().Execute(context.Background(), src, "m", 1, "minecraft:sand", 64)
	assert.ErrorIs(t, err, core.ErrDisconnected)
}

func TestExecute_DetachedTargetThroughSafeBoundary(t *testing.T) {
	net := container.NewNetwork()
	src := net.AddChest("store", 1)
	net.AddChest("m", 1)
	src.Put(1, "minecraft:sand", 64)
	net.Detach("m")

	_, err := NewExecutor().Execute(context.Background(), container.Safe(src), "m", 1, "minecraft:sand", 64)
	assert.ErrorIs(t, err, core.ErrDisconnected)
	assert.Equal(t, 64, src.Count("minecraft:sand"))
}

func TestExecute_InvalidAmount(t *testing.T) {
	_, err := NewExecutor().Execute(context.Background(), testutil.NewMockContainer("s"), "m", 1, "x", 0)
	assert.ErrorIs(t, err, core.ErrTransferFailed)
}
