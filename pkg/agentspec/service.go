// Package agentspec is the public facade over the agent specialization &
// dispatch core. It wires the Role Registry, Knowledge-Domain Registry,
// Specialization Store, Performance Accountant, Dispatcher, Prompt
// Synthesizer, and Assignment Controller together and exposes the ten
// operations of spec §6's "Exposed operations" table as plain Go methods.
// The wire protocol that fronts these methods (HTTP, gRPC, in-process call)
// is the embedder's concern, not this package's.
package agentspec

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/helixdispatch/agentspec/internal/agenthost"
	"github.com/helixdispatch/agentspec/internal/assignment"
	"github.com/helixdispatch/agentspec/internal/config"
	"github.com/helixdispatch/agentspec/internal/dispatch"
	"github.com/helixdispatch/agentspec/internal/domains"
	"github.com/helixdispatch/agentspec/internal/obs"
	"github.com/helixdispatch/agentspec/internal/performance"
	"github.com/helixdispatch/agentspec/internal/persistence"
	"github.com/helixdispatch/agentspec/internal/prompt"
	"github.com/helixdispatch/agentspec/internal/roles"
	"github.com/helixdispatch/agentspec/internal/specialization"
)

// Re-exported types so embedders don't need to import internal packages
// directly (which the Go toolchain forbids across module boundaries
// anyway, but keeps the public API surface explicit and stable).
type (
	Role                   = roles.Role
	Domain                 = domains.Domain
	Resource               = domains.Resource
	Specialization         = specialization.Specialization
	TaskPerformanceMetrics = specialization.TaskPerformanceMetrics
	Customizations         = specialization.Customizations
)

var (
	ErrRoleNotFound  = assignment.ErrRoleNotFound
	ErrAgentNotFound = assignment.ErrAgentNotFound
)

// Service is the top-level entry point into the core.
type Service struct {
	Roles   *roles.Registry
	Domains *domains.Registry

	store      *specialization.Store
	accountant *performance.Accountant
	dispatcher *dispatch.Dispatcher
	synth      *prompt.Synthesizer
	controller *assignment.Controller
}

// Dependencies bundles the collaborators an embedder must supply: a
// persistence gateway (always required) and an agent host resolver (always
// required for dispatch/assignment to have anything to select among).
type Dependencies struct {
	Gateway  persistence.Gateway
	Resolver agenthost.Resolver
	Cache    specialization.LookupCache // optional
	Log      *logrus.Logger            // optional, defaults to logrus.StandardLogger()
	Metrics  *obs.Metrics              // optional
}

// New constructs a Service, hydrating the Role/Domain/Specialization
// registries from deps.Gateway.
func New(ctx context.Context, _ config.Config, deps Dependencies) *Service {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	roleRegistry := roles.NewRegistry(log)
	domainRegistry := domains.NewRegistry(ctx, deps.Gateway, log)
	store := specialization.NewStore(ctx, deps.Gateway, deps.Cache, log)

	return &Service{
		Roles:      roleRegistry,
		Domains:    domainRegistry,
		store:      store,
		accountant: performance.New(store, nil, log, deps.Metrics),
		dispatcher: dispatch.New(store, roleRegistry, deps.Resolver, log, deps.Metrics),
		synth:      prompt.New(store, roleRegistry, domainRegistry),
		controller: assignment.New(roleRegistry, store, deps.Resolver, nil, log, deps.Metrics),
	}
}

// AssignRole binds an agent to a role (spec §6 assign_role).
func (s *Service) AssignRole(ctx context.Context, agentID, roleID string, customizations *Customizations) (*Specialization, error) {
	return s.controller.Assign(ctx, agentID, roleID, customizations)
}

// GetSpecialization returns the current specialization for an agent (spec
// §6 get_specialization).
func (s *Service) GetSpecialization(ctx context.Context, agentID string) (*Specialization, bool) {
	return s.store.Get(ctx, agentID)
}

// ListAgentsWithRole returns every specialization bound to roleID (spec §6
// list_agents_with_role).
func (s *Service) ListAgentsWithRole(roleID string) []*Specialization {
	return s.store.ListByRole(roleID)
}

// FindBestAgentForTask ranks eligible agents and returns the winner's id
// (spec §6 find_best_agent_for_task).
func (s *Service) FindBestAgentForTask(ctx context.Context, roleID, taskVerb string, domainIDs []string, missionID string) (string, bool) {
	return s.dispatcher.FindBestAgent(ctx, dispatch.Request{
		RoleID:    roleID,
		TaskVerb:  taskVerb,
		DomainIDs: domainIDs,
		MissionID: missionID,
	})
}

// RecordTaskCompletion updates performance metrics after a task runs (spec
// §6 record_task_completion).
func (s *Service) RecordTaskCompletion(ctx context.Context, agentID, taskVerb string, success bool, durationSeconds float64) {
	s.accountant.RecordTaskCompletion(ctx, agentID, taskVerb, success, durationSeconds)
}

// RecordFeedback applies critic feedback to the quality score (spec §6
// record_feedback).
func (s *Service) RecordFeedback(ctx context.Context, agentID, taskVerb string, qualityScore float64) {
	s.accountant.RecordFeedback(ctx, agentID, taskVerb, qualityScore)
}

// GenerateSpecializedPrompt synthesizes a prompt for an agent and task
// (spec §6 generate_specialized_prompt).
func (s *Service) GenerateSpecializedPrompt(ctx context.Context, agentID, taskDescription string) string {
	return s.synth.Generate(ctx, agentID, taskDescription)
}

// CreateRole registers a new role (spec §6 create_role).
func (s *Service) CreateRole(role Role) Role {
	return s.Roles.RegisterRole(role)
}

// CreateKnowledgeDomain registers a new knowledge domain (spec §6
// create_knowledge_domain).
func (s *Service) CreateKnowledgeDomain(ctx context.Context, domain Domain) Domain {
	return s.Domains.CreateDomain(ctx, domain)
}

// GetRole looks up a role by id (spec §6 get_role).
func (s *Service) GetRole(id string) (Role, bool) {
	return s.Roles.GetRole(id)
}

// GetKnowledgeDomain looks up a domain by id (spec §6 get_knowledge_domain).
func (s *Service) GetKnowledgeDomain(id string) (Domain, bool) {
	return s.Domains.GetDomain(id)
}

// ListRoles returns every registered role (spec §6 list).
func (s *Service) ListRoles() []Role {
	return s.Roles.ListRoles()
}

// ListKnowledgeDomains returns every registered domain (spec §6 list).
func (s *Service) ListKnowledgeDomains() []Domain {
	return s.Domains.ListDomains()
}
