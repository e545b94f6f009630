package registry

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger interface {
	Ping() string
}

type testService struct{ id string }

func (s *testService) Ping() string { return s.id }

type otherService struct{}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()

	svc := &testService{id: "a"}
	require.NoError(t, reg.Register(ctx, &ServiceRegistration{Name: "a", Service: svc, RegisteredBy: "mod"}))

	resolved, err := reg.ResolveByName(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, svc, resolved)

	entry, ok := reg.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, OriginUser, entry.Registration.Origin, "origin defaults to user")
	assert.False(t, entry.Registration.RegisteredAt.IsZero())

	_, err = reg.ResolveByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestRegistry_DuplicateRegistrationFails(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()

	first := &testService{id: "first"}
	require.NoError(t, reg.Register(ctx, &ServiceRegistration{Name: "shared", Service: first, RegisteredBy: "one"}))

	err := reg.Register(ctx, &ServiceRegistration{Name: "shared", Service: &testService{id: "second"}, RegisteredBy: "two"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateRegistration)

	var dup *DuplicateRegistrationError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "shared", dup.Name)
	assert.Equal(t, "one", dup.Existing.RegisteredBy)
	assert.Equal(t, "two", dup.Attempted.RegisteredBy)
	assert.Contains(t, err.Error(), `"shared"`)

	resolved, err := reg.ResolveByName(ctx, "shared")
	require.NoError(t, err)
	assert.Same(t, first, resolved, "existing entry must never be overwritten silently")
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_ConflictKeepsOrderAndEntry(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()

	original := &testService{id: "1"}
	require.NoError(t, reg.Register(ctx, &ServiceRegistration{Name: "x", Service: original}))
	require.NoError(t, reg.Register(ctx, &ServiceRegistration{Name: "y", Service: &testService{id: "2"}}))

	err := reg.Register(ctx, &ServiceRegistration{Name: "x", Service: original, RegisteredBy: "again"})
	assert.ErrorIs(t, err, ErrDuplicateRegistration, "the same instance is still a conflict")

	entry, ok := reg.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 1, entry.Sequence)
	assert.Empty(t, entry.Registration.RegisteredBy)
	assert.Equal(t, []string{"x", "y"}, reg.Names())
}

func TestRegistry_InvalidRegistrations(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()

	assert.ErrorIs(t, reg.Register(ctx, nil), ErrRegistrationNil)
	assert.ErrorIs(t, reg.Register(ctx, &ServiceRegistration{Service: &testService{}}), ErrRegistrationNameEmpty)
	assert.ErrorIs(t, reg.Register(ctx, &ServiceRegistration{Name: "nil"}), ErrRegistrationServiceNil)
	assert.Zero(t, reg.Len())
}

func TestRegistry_ResolveAllAssignableTo(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()

	require.NoError(t, reg.Register(ctx, &ServiceRegistration{Name: "p1", Service: &testService{id: "1"}}))
	require.NoError(t, reg.Register(ctx, &ServiceRegistration{Name: "other", Service: &otherService{}}))
	require.NoError(t, reg.Register(ctx, &ServiceRegistration{Name: "p2", Service: &testService{id: "2"}, Origin: OriginAutoConfiguration}))

	byInterface, err := reg.ResolveAllAssignableTo(ctx, reflect.TypeOf((*pinger)(nil)).Elem())
	require.NoError(t, err)
	require.Len(t, byInterface, 2)
	assert.Equal(t, "p1", byInterface[0].Name())
	assert.Equal(t, "p2", byInterface[1].Name())
	assert.Equal(t, OriginAutoConfiguration, byInterface[1].Registration.Origin)

	byType, err := reg.ResolveAllAssignableTo(ctx, reflect.TypeOf(&otherService{}))
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "other", byType[0].Name())
}
