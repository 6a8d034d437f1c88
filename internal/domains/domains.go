// Package domains implements the Knowledge-Domain Registry (spec component
// C2): a catalogue of knowledge domains, persisted as a whole-collection
// envelope on every create.
package domains

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/helixdispatch/agentspec/internal/idutil"
	"github.com/helixdispatch/agentspec/internal/persistence"
)

// ResourceType enumerates the kinds of resource a domain can point at.
type ResourceType string

const (
	ResourceDocument ResourceType = "document"
	ResourceAPI      ResourceType = "api"
	ResourceDatabase ResourceType = "database"
	ResourceModel    ResourceType = "model"
	ResourceTool     ResourceType = "tool"
)

// Resource is one pointer to external material backing a domain.
type Resource struct {
	Type         ResourceType `json:"type"`
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	AccessMethod string       `json:"access_method"`
}

// Domain is a knowledge domain (spec §3). ParentDomain and Subdomains are
// advisory back/forward references by id only — the registry never builds
// owning cycles and never enforces graph acyclicity (spec §9).
type Domain struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	ParentDomain string     `json:"parent_domain,omitempty"`
	Subdomains   []string   `json:"subdomains,omitempty"`
	Keywords     []string   `json:"keywords,omitempty"`
	Resources    []Resource `json:"resources,omitempty"`
}

const collectionName = "knowledge_domains"

// Registry is the in-memory Knowledge-Domain Registry, durable via an
// injected persistence.Gateway.
type Registry struct {
	mu      sync.RWMutex
	domains map[string]*Domain
	order   []string
	gateway persistence.Gateway
	log     *logrus.Logger
}

// NewRegistry constructs an empty registry and hydrates it from the
// gateway's "knowledge_domains" collection (spec §4.C2).
func NewRegistry(ctx context.Context, gateway persistence.Gateway, log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Registry{
		domains: make(map[string]*Domain),
		gateway: gateway,
		log:     log,
	}
	r.hydrate(ctx)
	return r
}

func (r *Registry) hydrate(ctx context.Context) {
	if r.gateway == nil {
		return
	}
	records, err := r.gateway.LoadCollection(ctx, collectionName)
	if err != nil {
		r.log.WithError(err).Warn("domains: load failed, starting empty")
		return
	}
	for _, raw := range records {
		var d Domain
		if err := json.Unmarshal(raw, &d); err != nil {
			r.log.WithError(err).Warn("domains: skipping malformed persisted domain")
			continue
		}
		if d.ID == "" {
			continue
		}
		r.domains[d.ID] = &d
		r.order = append(r.order, d.ID)
	}
}

// CreateDomain derives the domain's id from its Name identically to
// roles.DeriveID, stores it, and persists the full domain list. Persistence
// failures are logged and swallowed (spec §4.C2): the in-memory registry is
// always updated regardless of durability outcome.
func (r *Registry) CreateDomain(ctx context.Context, domain Domain) Domain {
	domain.ID = idutil.DeriveID(domain.Name)

	r.mu.Lock()
	if _, exists := r.domains[domain.ID]; !exists {
		r.order = append(r.order, domain.ID)
	}
	r.domains[domain.ID] = &domain
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persist(ctx, snapshot)
	return domain
}

func (r *Registry) snapshotLocked() []*Domain {
	out := make([]*Domain, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.domains[id])
	}
	return out
}

func (r *Registry) persist(ctx context.Context, snapshot []*Domain) {
	if r.gateway == nil {
		return
	}
	records := make([]json.RawMessage, 0, len(snapshot))
	for _, d := range snapshot {
		raw, err := json.Marshal(d)
		if err != nil {
			r.log.WithError(err).Warn("domains: failed to marshal domain for persistence")
			continue
		}
		records = append(records, raw)
	}
	if err := r.gateway.StoreCollection(ctx, collectionName, records); err != nil {
		r.log.WithError(err).Warn("domains: persistence flush failed, in-memory registry remains canonical")
	}
}

// GetDomain looks up a domain by id.
func (r *Registry) GetDomain(id string) (Domain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.domains[id]
	if !ok {
		return Domain{}, false
	}
	return *d, true
}

// ListDomains returns all domains in stable (registration) order.
func (r *Registry) ListDomains() []Domain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Domain, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.domains[id])
	}
	return out
}
