package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/burrow/internal/config"
)

type mockCommand struct {
	name   string
	called bool
	args   []string
}

func (m *mockCommand) Name() string  { return m.name }
func (m *mockCommand) Usage() string { return m.name }

func (m *mockCommand) Description() string { return "mock command" }

func (m *mockCommand) Run(_ context.Context, args []string) error {
	m.called = true
	m.args = args
	return nil
}

func TestRegistry_RegisterLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	cmd := &mockCommand{name: "mock"}
	r.Register(cmd)

	got, ok := r.Lookup("mock")
	require.True(t, ok)
	require.NoError(t, got.Run(context.Background(), []string{"mock", "a"}))
	assert.True(t, cmd.called)
	assert.Equal(t, []string{"mock", "a"}, cmd.args)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_Names(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(&mockCommand{name: "zeta"})
	r.Register(&mockCommand{name: "alpha"})
	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(&mockCommand{name: "dup"})
	assert.Panics(t, func() { r.Register(&mockCommand{name: "dup"}) })
}

func TestRegistry_EmptyNamePanics(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.Panics(t, func() { r.Register(&mockCommand{}) })
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	r := Defaults(NewSession(config.Config{}))
	assert.Equal(t, []string{"cp", "realpath"}, r.Names())
}
