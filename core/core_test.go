package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInventory() Inventory {
	inv := Inventory{}
	inv.Add("minecraft:sand", 3, 64)
	inv.Add("minecraft:sand", 1, 10)
	inv.Add("minecraft:gravel", 2, 32)
	return inv
}

func TestInventory_AddKeepsSlotsOrdered(t *testing.T) {
	inv := newTestInventory()

	rec := inv["minecraft:sand"]
	assert.Equal(t, 74, rec.Total)
	assert.Equal(t, []Location{{Slot: 1, Count: 10}, {Slot: 3, Count: 64}}, rec.Slots)

	first, ok := inv.FirstSlot("minecraft:sand")
	require.True(t, ok)
	assert.Equal(t, 1, first.Slot)
}

func TestInventory_AddIgnoresInvalidStacks(t *testing.T) {
	inv := Inventory{}
	inv.Add("", 1, 5)
	inv.Add("minecraft:dirt", 2, 0)
	assert.Empty(t, inv)
}

func TestInventory_CloneIsIndependent(t *testing.T) {
	inv := newTestInventory()
	clone := inv.Clone()

	clone.Consume("minecraft:sand", 1, 10)

	assert.Equal(t, 74, inv.Total("minecraft:sand"))
	assert.Equal(t, 64, clone.Total("minecraft:sand"))
	assert.Len(t, inv["minecraft:sand"].Slots, 2)
}

func TestInventory_ConsumeDropsEmptyEntries(t *testing.T) {
	inv := newTestInventory()

	inv.Consume("minecraft:gravel", 2, 16)
	assert.Equal(t, 16, inv.Total("minecraft:gravel"))

	inv.Consume("minecraft:gravel", 2, 16)
	_, ok := inv["minecraft:gravel"]
	assert.False(t, ok, "item entry should be dropped at zero")

	inv.Consume("minecraft:sand", 1, 10)
	assert.Equal(t, []Location{{Slot: 3, Count: 64}}, inv["minecraft:sand"].Slots)
}

func TestInventory_ConsumeClampsToSlot(t *testing.T) {
	inv := newTestInventory()
	inv.Consume("minecraft:sand", 1, 64)
	assert.Equal(t, 64, inv.Total("minecraft:sand"))
}

func TestInventory_ConsumeUnknownIsNoop(t *testing.T) {
	inv := newTestInventory()
	inv.Consume("minecraft:clay", 1, 1)
	inv.Consume("minecraft:sand", 9, 1)
	assert.True(t, inv.Equal(newTestInventory()))
}

func TestInventory_Items(t *testing.T) {
	assert.Equal(t, []string{"minecraft:gravel", "minecraft:sand"}, newTestInventory().Items())
}

func TestErrors_Taxonomy(t *testing.T) {
	var err error = &SlotChangedError{Slot: 4, Expected: "a", Actual: ""}
	assert.ErrorIs(t, err, ErrSlotChanged)
	assert.Contains(t, err.Error(), "<empty>")

	err = fmt.Errorf("execute: %w", &TransferFailedError{Reason: ReasonNoItemsTransferred})
	assert.ErrorIs(t, err, ErrTransferFailed)
	var tf *TransferFailedError
	require.True(t, errors.As(err, &tf))
	assert.Equal(t, ReasonNoItemsTransferred, tf.Reason)

	cause := errors.New("peripheral detached")
	err = NewDisconnected("peek", cause)
	assert.ErrorIs(t, err, ErrDisconnected)
	assert.ErrorIs(t, err, cause)
	assert.Same(t, err, NewDisconnected("move", err))
	assert.NoError(t, NewDisconnected("list", nil))
}

func TestScanResult_Empty(t *testing.T) {
	res := ScanResult{
		Results: []MachineState{
			{ID: "m1", Empty: true},
			{ID: "m2"},
			{ID: "m3", Empty: true},
		},
		EmptyIDs: []string{"m1", "m3"},
	}
	empty := res.Empty()
	require.Len(t, empty, 2)
	assert.Equal(t, "m3", empty[1].ID)
}
