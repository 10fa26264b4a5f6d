package testutil

import (
	"context"

	"github.com/hupe1980/restock/core"
	"github.com/stretchr/testify/mock"
)

// MockContainer is a testify mock of core.Container. Set expectations with
// On("List"|"Size"|"Peek"|"Move", ...).
type MockContainer struct {
	mock.Mock
	name string
}

var _ core.Container = (*MockContainer)(nil)

// NewMockContainer creates a mock container with the given name.
func NewMockContainer(name string) *MockContainer {
	return &MockContainer{name: name}
}

// Name implements core.Container.
func (m *MockContainer) Name() string { return m.name }

// List implements core.Container.
func (m *MockContainer) List(ctx context.Context) (map[int]core.ItemStack, error) {
	args := m.Called(ctx)
	slots, _ := args.Get(0).(map[int]core.ItemStack)
	return slots, args.Error(1)
}

// Size implements core.Container.
func (m *MockContainer) Size(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Peek implements core.Container.
func (m *MockContainer) Peek(ctx context.Context, slot int) (core.ItemStack, bool, error) {
	args := m.Called(ctx, slot)
	stack, _ := args.Get(0).(core.ItemStack)
	return stack, args.Bool(1), args.Error(2)
}

// Move implements core.Container.
func (m *MockContainer) Move(ctx context.Context, target string, slot, amount int) (int, error) {
	args := m.Called(ctx, target, slot, amount)
	return args.Int(0), args.Error(1)
}
