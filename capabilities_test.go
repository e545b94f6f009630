package actuator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilitySet(t *testing.T) {
	set := NewCapabilitySet("b", "a", "")

	assert.True(t, set.Has("a"))
	assert.False(t, set.Has(""))
	assert.Equal(t, []string{"a", "b"}, set.Names())
	assert.Equal(t, "[a, b]", set.String())

	without := set.Without("a")
	assert.False(t, without.Has("a"))
	assert.True(t, set.Has("a"), "Without must not modify the receiver")

	with := without.With("c")
	assert.Equal(t, []string{"b", "c"}, with.Names())
	assert.Equal(t, []string{"b"}, without.Names())

	var zero CapabilitySet
	assert.False(t, zero.Has("a"))
	assert.Empty(t, zero.Names())
	assert.True(t, zero.With("x").Has("x"))
}

func TestDeclareCapability(t *testing.T) {
	DeclareCapability("test.capability.declared")
	DeclareCapability("")

	assert.True(t, LinkedCapabilities().Has("test.capability.declared"))
	assert.False(t, LinkedCapabilities().Has(""))
}

func TestApplicationCapabilities(t *testing.T) {
	DeclareCapability("test.capability.app")

	app, err := NewApplication(WithLogger(&testLogger{}))
	require.NoError(t, err)
	assert.True(t, app.Capabilities().Has("test.capability.app"))

	filtered, err := NewApplication(
		WithLogger(&testLogger{}),
		WithCapabilities(LinkedCapabilities().Without("test.capability.app")),
	)
	require.NoError(t, err)
	assert.False(t, filtered.Capabilities().Has("test.capability.app"))
}
