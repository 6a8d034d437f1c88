package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixdispatch/agentspec/internal/roles"
	"github.com/helixdispatch/agentspec/internal/specialization"
	"github.com/helixdispatch/agentspec/internal/testsupport"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestAssign_RoleNotFound(t *testing.T) {
	roleRegistry := roles.NewRegistry(nil)
	store := specialization.NewStore(context.Background(), nil, nil, nil)
	resolver := testsupport.NewFakeResolver()
	c := New(roleRegistry, store, resolver, nil, nil, nil)

	_, err := c.Assign(context.Background(), "a1", "nonexistent", nil)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestAssign_AgentNotFound(t *testing.T) {
	roleRegistry := roles.NewRegistry(nil)
	store := specialization.NewStore(context.Background(), nil, nil, nil)
	resolver := testsupport.NewFakeResolver()
	c := New(roleRegistry, store, resolver, nil, nil, nil)

	_, err := c.Assign(context.Background(), "unresolvable", "researcher", nil)
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestAssign_AppliesRoleDefaultsAndStoresSpecialization(t *testing.T) {
	roleRegistry := roles.NewRegistry(nil)
	store := specialization.NewStore(context.Background(), nil, nil, nil)
	resolver := testsupport.NewFakeResolver()
	caps := resolver.AddAgent(&testsupport.FakeAgent{AgentID: "a1"})

	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	c := New(roleRegistry, store, resolver, fixedClock(now), nil, nil)

	spec, err := c.Assign(context.Background(), "a1", "researcher", nil)
	require.NoError(t, err)
	assert.Equal(t, "researcher", spec.RoleID)
	assert.Equal(t, now, spec.AssignedAt)

	role, _ := roleRegistry.GetRole("researcher")
	assert.Equal(t, "researcher", caps.Role)
	assert.Equal(t, role.SystemPrompt, caps.SystemPrompt)
	assert.Equal(t, role.Capabilities, caps.Capabilities)
	assert.NotNil(t, caps.Context["role"])

	got, ok := store.Get(context.Background(), "a1")
	require.True(t, ok)
	assert.Equal(t, "researcher", got.RoleID)
}

func TestAssign_CustomizationsOverrideAppliedCapabilities(t *testing.T) {
	roleRegistry := roles.NewRegistry(nil)
	store := specialization.NewStore(context.Background(), nil, nil, nil)
	resolver := testsupport.NewFakeResolver()
	caps := resolver.AddAgent(&testsupport.FakeAgent{AgentID: "a1"})

	c := New(roleRegistry, store, resolver, fixedClock(time.Now()), nil, nil)
	custom := &specialization.Customizations{Capabilities: []string{"bespoke"}}

	_, err := c.Assign(context.Background(), "a1", "researcher", custom)
	require.NoError(t, err)
	assert.Equal(t, []string{"bespoke"}, caps.Capabilities)
}

func TestAssign_ApplyFailureLeavesStoreUntouched(t *testing.T) {
	roleRegistry := roles.NewRegistry(nil)
	store := specialization.NewStore(context.Background(), nil, nil, nil)
	resolver := testsupport.NewFakeResolver()
	caps := resolver.AddAgent(&testsupport.FakeAgent{AgentID: "a1"})
	caps.FailOn = "prompt"

	c := New(roleRegistry, store, resolver, fixedClock(time.Now()), nil, nil)
	_, err := c.Assign(context.Background(), "a1", "researcher", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRoleApplicationFailed)

	_, ok := store.Get(context.Background(), "a1")
	assert.False(t, ok)
}

func TestAssign_ReplacesPriorSpecializationWithoutCarryingHistory(t *testing.T) {
	roleRegistry := roles.NewRegistry(nil)
	store := specialization.NewStore(context.Background(), nil, nil, nil)
	resolver := testsupport.NewFakeResolver()
	resolver.AddAgent(&testsupport.FakeAgent{AgentID: "a1"})

	c := New(roleRegistry, store, resolver, fixedClock(time.Now()), nil, nil)

	_, err := c.Assign(context.Background(), "a1", "researcher", nil)
	require.NoError(t, err)
	store.Mutate(context.Background(), "a1", func(spec *specialization.Specialization) *specialization.Specialization {
		spec.PerformanceByTask["research"] = specialization.TaskPerformanceMetrics{SuccessRate: 90, TaskCount: 10}
		return spec
	})

	_, err = c.Assign(context.Background(), "a1", "critic", nil)
	require.NoError(t, err)

	got, ok := store.Get(context.Background(), "a1")
	require.True(t, ok)
	assert.Equal(t, "critic", got.RoleID)
	assert.Empty(t, got.PerformanceByTask)
}
