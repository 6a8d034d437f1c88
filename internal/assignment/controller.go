// Package assignment implements the Assignment Controller (spec component
// C8): the top-level operation that validates role+agent existence,
// creates/updates the specialization record, applies role side-effects to
// the agent, and commits.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/helixdispatch/agentspec/internal/agenthost"
	"github.com/helixdispatch/agentspec/internal/obs"
	"github.com/helixdispatch/agentspec/internal/roles"
	"github.com/helixdispatch/agentspec/internal/specialization"
)

// ErrRoleNotFound is returned when role_id does not resolve in the Role
// Registry.
var ErrRoleNotFound = errors.New("assignment: role not found")

// ErrAgentNotFound is returned when agent_id does not resolve through the
// agent host's Resolver.
var ErrAgentNotFound = errors.New("assignment: agent not found")

// ErrRoleApplicationFailed is returned, wrapping the underlying cause, when
// the agent host's CapabilitySet rejects a role side-effect. The
// Specialization Store is not updated when this error is returned (spec
// §4.C8 step 6).
var ErrRoleApplicationFailed = errors.New("assignment: role application failed")

// Clock lets tests control "now"; production uses time.Now.
type Clock func() time.Time

// Controller performs assign() (spec §4.C8).
type Controller struct {
	roles    *roles.Registry
	store    *specialization.Store
	resolver agenthost.Resolver
	now      Clock
	log      *logrus.Logger
	obs      *obs.Metrics
}

// New constructs a Controller.
func New(roleRegistry *roles.Registry, store *specialization.Store, resolver agenthost.Resolver, now Clock, log *logrus.Logger, metrics *obs.Metrics) *Controller {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Controller{roles: roleRegistry, store: store, resolver: resolver, now: now, log: log, obs: metrics}
}

// Assign binds agentID to roleID, replacing any prior specialization for
// that agent without carrying its performance history forward (spec §3).
func (c *Controller) Assign(ctx context.Context, agentID, roleID string, customizations *specialization.Customizations) (*specialization.Specialization, error) {
	role, ok := c.roles.GetRole(roleID)
	if !ok {
		c.count("role_not_found")
		return nil, ErrRoleNotFound
	}

	capabilities, ok := c.resolver.Capabilities(agentID)
	if !ok {
		c.count("agent_not_found")
		return nil, ErrAgentNotFound
	}

	spec, err := specialization.New(agentID, roleID, customizations, c.now())
	if err != nil {
		return nil, err
	}

	effectivePrompt := spec.EffectiveSystemPrompt(role.SystemPrompt)
	effectiveCapabilities := spec.EffectiveCapabilities(role.Capabilities)

	if err := capabilities.SetRole(roleID); err != nil {
		c.count("apply_failed")
		return nil, fmt.Errorf("%w: %v", ErrRoleApplicationFailed, err)
	}
	if err := capabilities.SetSystemPrompt(effectivePrompt); err != nil {
		c.count("apply_failed")
		return nil, fmt.Errorf("%w: %v", ErrRoleApplicationFailed, err)
	}
	if err := capabilities.SetCapabilities(effectiveCapabilities); err != nil {
		c.count("apply_failed")
		return nil, fmt.Errorf("%w: %v", ErrRoleApplicationFailed, err)
	}
	if err := capabilities.StoreInContext("role", map[string]interface{}{
		"role_id":           roleID,
		"system_prompt":     effectivePrompt,
		"capabilities":      effectiveCapabilities,
		"knowledge_domains": spec.EffectiveKnowledgeDomains(role.KnowledgeDomains),
	}); err != nil {
		c.count("apply_failed")
		return nil, fmt.Errorf("%w: %v", ErrRoleApplicationFailed, err)
	}

	c.store.Put(ctx, spec)
	c.count("assigned")

	c.log.WithFields(logrus.Fields{
		"component": "assignment.controller", "agent_id": agentID, "role_id": roleID,
	}).Info("agent assigned to role")

	return spec, nil
}

func (c *Controller) count(outcome string) {
	if c.obs == nil {
		return
	}
	c.obs.AssignmentTotal.WithLabelValues(outcome).Inc()
}
