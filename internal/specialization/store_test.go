package specialization

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixdispatch/agentspec/internal/testsupport"
)

func jsonRawRecord(t *testing.T, pr persistedRecord) []json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(pr)
	require.NoError(t, err)
	return []json.RawMessage{raw}
}

func TestStore_PutThenGet(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	store := NewStore(context.Background(), gw, nil, nil)

	spec, err := New("a1", "researcher", nil, time.Now())
	require.NoError(t, err)
	store.Put(context.Background(), spec)

	got, ok := store.Get(context.Background(), "a1")
	require.True(t, ok)
	assert.Equal(t, "researcher", got.RoleID)
	assert.Equal(t, 1, gw.StoreCalls)
}

func TestStore_PutReplacesWithoutCarryingPerformanceForward(t *testing.T) {
	store := NewStore(context.Background(), nil, nil, nil)

	first, err := New("a1", "researcher", nil, time.Now())
	require.NoError(t, err)
	first.PerformanceByTask["research"] = TaskPerformanceMetrics{SuccessRate: 80, TaskCount: 5}
	store.Put(context.Background(), first)

	second, err := New("a1", "critic", nil, time.Now())
	require.NoError(t, err)
	store.Put(context.Background(), second)

	got, ok := store.Get(context.Background(), "a1")
	require.True(t, ok)
	assert.Equal(t, "critic", got.RoleID)
	assert.Empty(t, got.PerformanceByTask)
}

func TestStore_GetReturnsClone(t *testing.T) {
	store := NewStore(context.Background(), nil, nil, nil)
	spec, err := New("a1", "researcher", nil, time.Now())
	require.NoError(t, err)
	store.Put(context.Background(), spec)

	got, _ := store.Get(context.Background(), "a1")
	got.RoleID = "mutated"

	got2, _ := store.Get(context.Background(), "a1")
	assert.Equal(t, "researcher", got2.RoleID)
}

func TestStore_ListByRole(t *testing.T) {
	store := NewStore(context.Background(), nil, nil, nil)
	a1, _ := New("a1", "researcher", nil, time.Now())
	a2, _ := New("a2", "critic", nil, time.Now())
	a3, _ := New("a3", "researcher", nil, time.Now())
	store.Put(context.Background(), a1)
	store.Put(context.Background(), a2)
	store.Put(context.Background(), a3)

	got := store.ListByRole("researcher")
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].AgentID)
	assert.Equal(t, "a3", got[1].AgentID)
}

func TestStore_Delete(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	store := NewStore(context.Background(), gw, nil, nil)
	spec, _ := New("a1", "researcher", nil, time.Now())
	store.Put(context.Background(), spec)

	store.Delete(context.Background(), "a1")
	_, ok := store.Get(context.Background(), "a1")
	assert.False(t, ok)
	assert.Empty(t, gw.Snapshot(collectionName))
}

func TestStore_Mutate_CreatesWhenAbsent(t *testing.T) {
	store := NewStore(context.Background(), nil, nil, nil)

	result := store.Mutate(context.Background(), "a1", func(spec *Specialization) *Specialization {
		spec.PerformanceByTask["research"] = TaskPerformanceMetrics{SuccessRate: 10, TaskCount: 1}
		return spec
	})

	assert.Equal(t, "a1", result.AgentID)
	assert.Equal(t, 10.0, result.PerformanceByTask["research"].SuccessRate)

	got, ok := store.Get(context.Background(), "a1")
	require.True(t, ok)
	assert.Equal(t, 10.0, got.PerformanceByTask["research"].SuccessRate)
}

func TestStore_Mutate_AssignsIncreasingSeq(t *testing.T) {
	store := NewStore(context.Background(), nil, nil, nil)
	identity := func(spec *Specialization) *Specialization { return spec }

	first := store.Mutate(context.Background(), "a1", identity)
	second := store.Mutate(context.Background(), "a2", identity)

	assert.Less(t, first.Seq(), second.Seq())
}

func TestStore_Hydrate_MigratesLegacyProficiencyRecord(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	legacyProficiency := 72.5
	gw.Seed(collectionName, []jsonRawRecord(t, persistedRecord{
		AgentID:           "legacy-agent",
		RoleID:            "researcher",
		LegacyProficiency: &legacyProficiency,
	}))

	store := NewStore(context.Background(), gw, nil, nil)

	got, ok := store.Get(context.Background(), "legacy-agent")
	require.True(t, ok)
	assert.NotNil(t, got.PerformanceByTask)
	assert.Empty(t, got.PerformanceByTask)
}

func TestStore_Hydrate_SkipsMalformedAndIncompleteRecords(t *testing.T) {
	gw := testsupport.NewFakeGateway()
	records := jsonRawRecord(t, persistedRecord{AgentID: "", RoleID: "researcher"})
	records = append(records, json.RawMessage(`{not json`))
	gw.Seed(collectionName, records)

	store := NewStore(context.Background(), gw, nil, nil)
	assert.Empty(t, store.ListAll())
}
