// Package prompt implements the Prompt Synthesizer (spec component C7):
// assembles a role-specific prompt for an agent and a task description,
// merging role defaults with per-agent overrides and relevant domain
// context.
//
// Grounded on the retrieval pack's
// internal/debate/agents.AgentTemplate.GenerateSystemPrompt (template-string
// assembly) and SpecializedAgent's pattern of reading through a resolved
// role before composing agent-facing text.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/helixdispatch/agentspec/internal/domains"
	"github.com/helixdispatch/agentspec/internal/roles"
	"github.com/helixdispatch/agentspec/internal/specialization"
)

const genericTemplate = "You are an AI agent tasked with: %s. Complete this task to the best of your abilities."

// Synthesizer assembles specialized prompts.
type Synthesizer struct {
	specs   *specialization.Store
	roles   *roles.Registry
	domains *domains.Registry
}

// New constructs a Synthesizer.
func New(specs *specialization.Store, roleRegistry *roles.Registry, domainRegistry *domains.Registry) *Synthesizer {
	return &Synthesizer{specs: specs, roles: roleRegistry, domains: domainRegistry}
}

// Generate returns the prompt for agentID executing taskDescription. If no
// specialization exists, or its role does not resolve, the generic fallback
// is returned (spec §4.C7, §7: prompt synthesis never raises).
func (s *Synthesizer) Generate(ctx context.Context, agentID, taskDescription string) string {
	spec, ok := s.specs.Get(ctx, agentID)
	if !ok {
		return fmt.Sprintf(genericTemplate, taskDescription)
	}

	role, roleResolved := s.roles.GetRole(spec.RoleID)
	if !roleResolved {
		return fmt.Sprintf(genericTemplate, taskDescription)
	}

	var b strings.Builder

	b.WriteString(spec.EffectiveSystemPrompt(role.SystemPrompt))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Current Task: %s", taskDescription))
	b.WriteString("\n\n")

	effectiveDomains := spec.EffectiveKnowledgeDomains(role.KnowledgeDomains)
	resolvedDomains := s.resolveDomains(effectiveDomains)
	if len(resolvedDomains) > 0 {
		b.WriteString("Relevant Knowledge Domains:\n")
		for _, d := range resolvedDomains {
			b.WriteString(fmt.Sprintf("- %s: %s\n", d.Name, d.Description))
		}
		b.WriteString("\n")
	}

	effectiveCapabilities := spec.EffectiveCapabilities(role.Capabilities)
	if len(effectiveCapabilities) > 0 {
		b.WriteString("Your Capabilities:\n")
		for _, c := range effectiveCapabilities {
			b.WriteString(fmt.Sprintf("- %s\n", c))
		}
		b.WriteString("\n")
	}

	effectiveResponsibilities := spec.EffectiveResponsibilities(role.Responsibilities)
	if len(effectiveResponsibilities) > 0 {
		b.WriteString("Your Responsibilities:\n")
		for _, r := range effectiveResponsibilities {
			b.WriteString(fmt.Sprintf("- %s\n", r))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func (s *Synthesizer) resolveDomains(domainIDs []string) []domains.Domain {
	out := make([]domains.Domain, 0, len(domainIDs))
	for _, id := range domainIDs {
		if d, ok := s.domains.GetDomain(id); ok {
			out = append(out, d)
		}
	}
	return out
}
