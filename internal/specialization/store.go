package specialization

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/helixdispatch/agentspec/internal/persistence"
)

const collectionName = "agent_specializations"

// LookupCache is an optional, advisory read-through cache the Store's Get
// consults first, returning a cache hit as is. A cache miss or error falls
// back to the in-memory map. List operations never consult the cache, and a
// cache failure never blocks a write (spec §5: persistence/cache I/O never
// holds the exclusive lock).
type LookupCache interface {
	Get(ctx context.Context, agentID string) (*Specialization, bool)
	Set(ctx context.Context, spec *Specialization)
	Delete(ctx context.Context, agentID string)
}

// Store is the Specialization Store (spec component C4): one in-memory map
// of agent_id -> Specialization protected by a single RWMutex, durable via
// an injected persistence.Gateway, optionally fronted by a LookupCache.
type Store struct {
	mu    sync.RWMutex
	specs map[string]*Specialization
	order []string
	seq   uint64

	gateway persistence.Gateway
	cache   LookupCache
	log     *logrus.Logger
}

// NewStore constructs a Store and hydrates it from the gateway's
// "agent_specializations" collection (spec §4.C4).
func NewStore(ctx context.Context, gateway persistence.Gateway, cache LookupCache, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{
		specs:   make(map[string]*Specialization),
		gateway: gateway,
		cache:   cache,
		log:     log,
	}
	s.hydrate(ctx)
	return s
}

// persistedRecord is the wire shape for one specialization (spec §6),
// including the legacy top-level "proficiency" field some older records
// carry instead of performance_by_task (spec §9).
type persistedRecord struct {
	AgentID           string                            `json:"agent_id"`
	RoleID            string                            `json:"role_id"`
	AssignedAt        time.Time                          `json:"assigned_at"`
	PerformanceByTask map[string]TaskPerformanceMetrics `json:"performance_by_task"`
	Customizations    *Customizations                    `json:"customizations,omitempty"`
	LegacyProficiency *float64                           `json:"proficiency,omitempty"`
}

func (s *Store) hydrate(ctx context.Context) {
	if s.gateway == nil {
		return
	}
	records, err := s.gateway.LoadCollection(ctx, collectionName)
	if err != nil {
		s.log.WithError(err).Warn("specialization: load failed, starting empty")
		return
	}
	for _, raw := range records {
		var pr persistedRecord
		if err := json.Unmarshal(raw, &pr); err != nil {
			s.log.WithError(err).Warn("specialization: skipping malformed persisted record")
			continue
		}
		if pr.AgentID == "" || pr.RoleID == "" {
			continue
		}
		performance := pr.PerformanceByTask
		if performance == nil {
			// Legacy record: no performance_by_task map. Whether or not it
			// carried a top-level "proficiency" number, the migration is
			// the same — treat it as an empty map (spec §9).
			performance = make(map[string]TaskPerformanceMetrics)
		}
		spec := &Specialization{
			AgentID:           pr.AgentID,
			RoleID:            pr.RoleID,
			AssignedAt:        pr.AssignedAt,
			PerformanceByTask: performance,
			Customizations:    pr.Customizations,
		}
		s.seq++
		spec.seq = s.seq
		s.specs[spec.AgentID] = spec
		s.order = append(s.order, spec.AgentID)
	}
}

// Put inserts or replaces the specialization for spec.AgentID and flushes
// the complete collection (spec §3: "assignment replaces the prior
// record"). The caller owns spec; Put stores a clone.
func (s *Store) Put(ctx context.Context, spec *Specialization) {
	clone := spec.Clone()

	s.mu.Lock()
	if existing, exists := s.specs[clone.AgentID]; exists {
		clone.seq = existing.seq
	} else {
		s.order = append(s.order, clone.AgentID)
		s.seq++
		clone.seq = s.seq
	}
	s.specs[clone.AgentID] = clone
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.Set(ctx, clone)
	}
	s.flush(ctx, snapshot)
}

// Get returns the specialization for agentID, consulting the cache first.
func (s *Store) Get(ctx context.Context, agentID string) (*Specialization, bool) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, agentID); ok {
			return cached, true
		}
	}

	s.mu.RLock()
	spec, ok := s.specs[agentID]
	var clone *Specialization
	if ok {
		clone = spec.Clone()
	}
	s.mu.RUnlock()

	if ok && s.cache != nil {
		s.cache.Set(ctx, clone)
	}
	return clone, ok
}

// ListByRole returns every specialization currently bound to roleID, in
// stable insertion order.
func (s *Store) ListByRole(roleID string) []*Specialization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Specialization, 0)
	for _, id := range s.order {
		spec, ok := s.specs[id]
		if ok && spec.RoleID == roleID {
			out = append(out, spec.Clone())
		}
	}
	return out
}

// ListAll returns every specialization in stable insertion order.
func (s *Store) ListAll() []*Specialization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Specialization, 0, len(s.order))
	for _, id := range s.order {
		if spec, ok := s.specs[id]; ok {
			out = append(out, spec.Clone())
		}
	}
	return out
}

// Delete removes the specialization for agentID and flushes the remaining
// collection.
func (s *Store) Delete(ctx context.Context, agentID string) {
	s.mu.Lock()
	if _, exists := s.specs[agentID]; !exists {
		s.mu.Unlock()
		return
	}
	delete(s.specs, agentID)
	for i, id := range s.order {
		if id == agentID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.Delete(ctx, agentID)
	}
	s.flush(ctx, snapshot)
}

// Mutate runs update against a clone of the current record for agentID (or,
// if none exists, a new Specialization carrying only agentID and an empty
// performance map, left to update to populate the rest),
// then stores the result and flushes. The entire read-modify-write happens
// under the Store's exclusive lock (spec §5), with the persistence flush
// performed after the lock is released.
func (s *Store) Mutate(ctx context.Context, agentID string, update func(spec *Specialization) *Specialization) *Specialization {
	s.mu.Lock()
	existing, ok := s.specs[agentID]
	var working *Specialization
	if ok {
		working = existing.Clone()
	} else {
		working = &Specialization{
			AgentID:           agentID,
			PerformanceByTask: make(map[string]TaskPerformanceMetrics),
		}
	}
	updated := update(working)
	if ok {
		updated.seq = existing.seq
	} else {
		s.order = append(s.order, agentID)
		s.seq++
		updated.seq = s.seq
	}
	s.specs[agentID] = updated
	result := updated.Clone()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.Set(ctx, result)
	}
	s.flush(ctx, snapshot)
	return result
}

func (s *Store) snapshotLocked() []*Specialization {
	out := make([]*Specialization, 0, len(s.order))
	for _, id := range s.order {
		if spec, ok := s.specs[id]; ok {
			out = append(out, spec)
		}
	}
	return out
}

// flush copies the snapshot into wire records and hands it to the gateway.
// It never holds s.mu: callers must have already released it (spec §5).
func (s *Store) flush(ctx context.Context, snapshot []*Specialization) {
	if s.gateway == nil {
		return
	}
	records := make([]json.RawMessage, 0, len(snapshot))
	for _, spec := range snapshot {
		raw, err := json.Marshal(persistedRecord{
			AgentID:           spec.AgentID,
			RoleID:            spec.RoleID,
			AssignedAt:        spec.AssignedAt,
			PerformanceByTask: spec.PerformanceByTask,
			Customizations:    spec.Customizations,
		})
		if err != nil {
			s.log.WithError(err).Warn("specialization: failed to marshal record for persistence")
			continue
		}
		records = append(records, raw)
	}
	if err := s.gateway.StoreCollection(ctx, collectionName, records); err != nil {
		s.log.WithError(err).Warn("specialization: persistence flush failed, in-memory store remains canonical")
	}
}
