package restock

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/restock/config"
	"github.com/hupe1980/restock/container"
	"github.com/hupe1980/restock/core"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("config/testdata/restock.yaml")
	require.NoError(t, err)
	return cfg
}

func newFactory(cfg *config.Config) *container.Network {
	net := container.NewNetwork()
	store := net.AddChest(cfg.Settings.Source, 54)
	net.AddChest(cfg.Settings.Processing, 4)
	for _, m := range cfg.Machines {
		net.AddChest(m.Container, 1)
	}
	for _, item := range []string{"minecraft:cobblestone", "minecraft:gravel", "minecraft:sand"} {
		store.Insert(item, 640)
	}
	return net
}

func unitsIn(t *testing.T, net *container.Network, name string) int {
	t.Helper()
	c, ok := net.Chest(name)
	require.True(t, ok, name)
	slots, err := c.List(context.Background())
	require.NoError(t, err)
	total := 0
	for _, st := range slots {
		total += st.Count
	}
	return total
}

func TestRestock_TickFillsEveryMachine(t *testing.T) {
	cfg := loadConfig(t)
	net := newFactory(cfg)
	reg := prometheus.NewRegistry()

	rs, err := New(cfg, net, func(o *Options) { o.Registerer = reg })
	require.NoError(t, err)
	defer rs.Close()
	assert.Equal(t, "weighted", rs.Policy().Name())
	require.NotNil(t, rs.Chain())

	res, err := rs.Tick(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Chain.Transfers, 3)
	assert.Equal(t, 3*64, unitsIn(t, net, cfg.Settings.Processing))
	assert.Len(t, res.Cycle.Transfers, 3)
	for _, m := range cfg.Machines {
		assert.Equal(t, 64, unitsIn(t, net, m.Container), m.ID)
	}
	assert.Equal(t, 3*640, unitsIn(t, net, "store")+unitsIn(t, net, cfg.Settings.Processing)+3*64,
		"units are conserved across the network")

	status, err := rs.Status(context.Background())
	require.NoError(t, err)
	assert.Len(t, status, len(cfg.Machines))

	n, err := testutil.GatherAndCount(reg, "restock_items_moved_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	res, err = rs.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Cycle.EmptyCount)
	assert.Empty(t, res.Cycle.Transfers)
}

func TestRestock_DetachedMachineIsNotFed(t *testing.T) {
	cfg := loadConfig(t)
	net := newFactory(cfg)
	net.Detach("sieve_2_in")

	rs, err := New(cfg, net)
	require.NoError(t, err)

	res, err := rs.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cycle.ScanFailures)
	assert.Len(t, res.Cycle.Transfers, 2)

	status, err := rs.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status["sieve_2"].Reachable)
	assert.False(t, status["sieve_2"].Empty)
}

func TestRestock_NoChainWithoutProcessing(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Chain = nil
	cfg.Settings.Processing = ""

	rs, err := New(cfg, newFactory(loadConfig(t)))
	require.NoError(t, err)
	assert.Nil(t, rs.Chain())

	res, err := rs.Tick(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Chain)
	assert.False(t, res.Cycle.Prescanned)
}

func TestRestock_RejectsInvalidConfig(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Machines = append(cfg.Machines, core.MachineConfig{ID: "ghost", Type: "teleporter", Container: "x"})

	_, err := New(cfg, container.NewNetwork())
	assert.ErrorIs(t, err, core.ErrUnknownType)
}

func TestNewPolicy(t *testing.T) {
	cfg := loadConfig(t)

	cfg.Settings.Policy = config.PolicyUrgency
	pol, err := NewPolicy(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "urgency", pol.Name())

	cfg.Settings.Policy = "round_robin"
	_, err = NewPolicy(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
