// Package roles implements the Role Registry (spec component C1): an
// immutable+user-extensible catalogue of role definitions.
//
// Locking discipline is grounded on the retrieval pack's
// internal/debate/agents.TemplateRegistry (vasic-digital-SuperAgent): one
// map behind a sync.RWMutex, reads take RLock, mutation takes Lock.
package roles

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/helixdispatch/agentspec/internal/idutil"
)

// DeriveID lowercases name and replaces any run of non-alphanumeric,
// non-underscore characters with a single underscore, then trims leading and
// trailing underscores (spec §4.C1).
func DeriveID(name string) string {
	return idutil.DeriveID(name)
}

// Role is immutable once registered (spec §3).
type Role struct {
	ID               string
	Name             string
	Description      string
	Capabilities     []string
	Responsibilities []string
	KnowledgeDomains []string
	SystemPrompt     string
	DefaultPriority  int
	Metadata         map[string]interface{}
}

// Registry is the in-memory Role Registry. Dynamically registered roles are
// not persisted by this subsystem (spec §4.C1) — it is a pure in-process
// catalogue re-seeded with the predefined set on every construction.
type Registry struct {
	mu    sync.RWMutex
	roles map[string]*Role
	order []string // insertion order, for stable ListRoles
	log   *logrus.Logger
}

// NewRegistry constructs a Registry pre-populated with the predefined roles:
// coordinator, researcher, creative, critic, executor, domain_expert.
func NewRegistry(log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Registry{
		roles: make(map[string]*Role),
		log:   log,
	}
	for _, role := range predefinedRoles() {
		r.register(role)
	}
	return r
}

// RegisterRole derives the role's id from its Name and overwrites any
// existing role with that id (spec §4.C1). The returned Role carries the
// derived id.
func (r *Registry) RegisterRole(role Role) Role {
	role.ID = DeriveID(role.Name)
	r.register(&role)
	r.log.WithFields(logrus.Fields{"component": "roles.registry", "role_id": role.ID}).Info("role registered")
	return role
}

func (r *Registry) register(role *Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.roles[role.ID]; !exists {
		r.order = append(r.order, role.ID)
	}
	r.roles[role.ID] = role
}

// GetRole looks up a role by id.
func (r *Registry) GetRole(id string) (Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles[id]
	if !ok {
		return Role{}, false
	}
	return *role, true
}

// ListRoles returns all roles in stable (registration) order.
func (r *Registry) ListRoles() []Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Role, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.roles[id])
	}
	return out
}
