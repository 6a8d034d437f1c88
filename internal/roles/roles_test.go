package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveID(t *testing.T) {
	cases := map[string]string{
		"Coordinator":        "coordinator",
		"Domain Expert":      "domain_expert",
		"  Quality  Critic ": "quality_critic",
		"Ops/Infra-Lead!!":   "ops_infra_lead",
	}
	for name, want := range cases {
		assert.Equal(t, want, DeriveID(name), name)
	}
}

func TestNewRegistry_SeedsPredefinedRoles(t *testing.T) {
	r := NewRegistry(nil)

	want := []string{"coordinator", "researcher", "creative", "critic", "executor", "domain_expert"}
	for _, id := range want {
		role, ok := r.GetRole(id)
		require.True(t, ok, id)
		assert.Equal(t, id, role.ID)
		assert.NotEmpty(t, role.SystemPrompt)
	}

	assert.Len(t, r.ListRoles(), len(want))
}

func TestRegisterRole_IdempotentReplace(t *testing.T) {
	r := NewRegistry(nil)

	first := r.RegisterRole(Role{Name: "Quality Critic", Description: "v1", DefaultPriority: 1})
	assert.Equal(t, "quality_critic", first.ID)

	second := r.RegisterRole(Role{Name: "Quality Critic", Description: "v2", DefaultPriority: 2})
	assert.Equal(t, "quality_critic", second.ID)

	got, ok := r.GetRole("quality_critic")
	require.True(t, ok)
	assert.Equal(t, "v2", got.Description)
	assert.Equal(t, 2, got.DefaultPriority)

	// Replacing an existing id must not grow the registry or disturb
	// stable iteration order.
	roleIDs := make(map[string]int)
	for i, role := range r.ListRoles() {
		roleIDs[role.ID] = i
	}
	idx, present := roleIDs["quality_critic"]
	assert.True(t, present)
	assert.Equal(t, 6, idx)
	assert.Len(t, r.ListRoles(), 7)
}

func TestGetRole_Miss(t *testing.T) {
	r := NewRegistry(nil)
	_, ok := r.GetRole("nonexistent")
	assert.False(t, ok)
}
