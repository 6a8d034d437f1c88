package persistence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCollection_UnwrapsArrayShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/queryData", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{[]any{map[string]any{"agent_id": "a1"}}},
		})
	}))
	defer server.Close()

	g := NewHTTPGateway(server.URL, StaticTokenSource("test-token"))
	records, err := g.LoadCollection(context.Background(), "agent_specializations")
	require.NoError(t, err)
	require.Len(t, records, 1)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(records[0], &decoded))
	assert.Equal(t, "a1", decoded["agent_id"])
}

func TestLoadCollection_UnwrapsWrappedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"data": []any{map[string]any{"agent_id": "a2"}}}},
		})
	}))
	defer server.Close()

	g := NewHTTPGateway(server.URL, StaticTokenSource("test-token"))
	records, err := g.LoadCollection(context.Background(), "agent_specializations")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestLoadCollection_EmptyResponseYieldsEmptyNilError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer server.Close()

	g := NewHTTPGateway(server.URL, StaticTokenSource("t"))
	records, err := g.LoadCollection(context.Background(), "x")
	assert.NoError(t, err)
	assert.Nil(t, records)
}

func TestLoadCollection_ServerErrorYieldsEmptyNilError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	g := NewHTTPGateway(server.URL, StaticTokenSource("t"))
	records, err := g.LoadCollection(context.Background(), "x")
	assert.NoError(t, err)
	assert.Nil(t, records)
}

func TestStoreCollection_SendsEnvelopeAndStorageType(t *testing.T) {
	var captured storeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storeData", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	g := NewHTTPGateway(server.URL, StaticTokenSource("t"), WithStorageType("mongo"))
	err := g.StoreCollection(context.Background(), "agent_specializations", []json.RawMessage{[]byte(`{"agent_id":"a1"}`)})
	require.NoError(t, err)

	assert.Equal(t, "agent_specializations", captured.ID)
	assert.Equal(t, "mongo", captured.StorageType)
	assert.Len(t, captured.Data, 1)
}

func TestStoreCollection_PropagatesFailureAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	g := NewHTTPGateway(server.URL, StaticTokenSource("t"))
	err := g.StoreCollection(context.Background(), "x", nil)
	assert.Error(t, err)
}

func TestExtractRecords_RejectsNeitherShape(t *testing.T) {
	_, err := extractRecords(json.RawMessage(`"just a string"`))
	assert.Error(t, err)
}
