// Package testsupport provides shared fakes used across this module's test
// files: an in-memory persistence.Gateway and an in-memory agenthost
// resolver/capability set, so each package's tests can exercise real
// dependency injection without a network or an external agent process.
package testsupport

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/helixdispatch/agentspec/internal/agenthost"
)

// FakeGateway is an in-process persistence.Gateway: LoadCollection/
// StoreCollection operate against an in-memory map, so tests can assert on
// what was flushed and seed what a hydration pass should see.
type FakeGateway struct {
	mu          sync.Mutex
	collections map[string][]json.RawMessage
	StoreCalls  int
	FailStore   bool
	FailLoad    bool
}

// NewFakeGateway constructs an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{collections: make(map[string][]json.RawMessage)}
}

func (g *FakeGateway) LoadCollection(_ context.Context, name string) ([]json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailLoad {
		return nil, nil
	}
	return append([]json.RawMessage(nil), g.collections[name]...), nil
}

func (g *FakeGateway) StoreCollection(_ context.Context, name string, records []json.RawMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.StoreCalls++
	if g.FailStore {
		return errStoreFailed
	}
	g.collections[name] = append([]json.RawMessage(nil), records...)
	return nil
}

// Seed pre-populates a collection, as if a prior process had already
// flushed it.
func (g *FakeGateway) Seed(name string, records []json.RawMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.collections[name] = records
}

// Snapshot returns what is currently stored for name.
func (g *FakeGateway) Snapshot(name string) []json.RawMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]json.RawMessage(nil), g.collections[name]...)
}

type storeFailedError struct{}

func (storeFailedError) Error() string { return "testsupport: simulated store failure" }

var errStoreFailed = storeFailedError{}

// FakeAgent is a minimal agenthost.Agent.
type FakeAgent struct {
	AgentID   string
	Mission   string
	AgentStat agenthost.Status
}

func (a *FakeAgent) ID() string               { return a.AgentID }
func (a *FakeAgent) MissionID() string        { return a.Mission }
func (a *FakeAgent) Status() agenthost.Status { return a.AgentStat }

// FakeCapabilitySet records every side-effect call the Assignment
// Controller makes, optionally failing on command.
type FakeCapabilitySet struct {
	Role         string
	SystemPrompt string
	Capabilities []string
	Context      map[string]interface{}
	FailOn       string // "role", "prompt", "capabilities", "context", or ""
}

func (c *FakeCapabilitySet) SetRole(roleID string) error {
	if c.FailOn == "role" {
		return errApplyFailed
	}
	c.Role = roleID
	return nil
}

func (c *FakeCapabilitySet) SetSystemPrompt(prompt string) error {
	if c.FailOn == "prompt" {
		return errApplyFailed
	}
	c.SystemPrompt = prompt
	return nil
}

func (c *FakeCapabilitySet) SetCapabilities(capabilities []string) error {
	if c.FailOn == "capabilities" {
		return errApplyFailed
	}
	c.Capabilities = capabilities
	return nil
}

func (c *FakeCapabilitySet) StoreInContext(key string, value interface{}) error {
	if c.FailOn == "context" {
		return errApplyFailed
	}
	if c.Context == nil {
		c.Context = make(map[string]interface{})
	}
	c.Context[key] = value
	return nil
}

type applyFailedError struct{}

func (applyFailedError) Error() string { return "testsupport: simulated apply failure" }

var errApplyFailed = applyFailedError{}

// FakeResolver is an in-memory agenthost.Resolver.
type FakeResolver struct {
	mu           sync.Mutex
	agents       map[string]*FakeAgent
	capabilities map[string]*FakeCapabilitySet
}

// NewFakeResolver constructs an empty FakeResolver.
func NewFakeResolver() *FakeResolver {
	return &FakeResolver{
		agents:       make(map[string]*FakeAgent),
		capabilities: make(map[string]*FakeCapabilitySet),
	}
}

// AddAgent registers an agent (and its capability set) by id.
func (r *FakeResolver) AddAgent(agent *FakeAgent) *FakeCapabilitySet {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agent.AgentID] = agent
	caps := &FakeCapabilitySet{}
	r.capabilities[agent.AgentID] = caps
	return caps
}

func (r *FakeResolver) Agent(agentID string) (agenthost.Agent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[agentID]
	if !ok {
		return nil, false
	}
	return a, true
}

func (r *FakeResolver) Capabilities(agentID string) (agenthost.CapabilitySet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.capabilities[agentID]
	if !ok {
		return nil, false
	}
	return c, true
}
