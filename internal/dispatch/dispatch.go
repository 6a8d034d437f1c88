// Package dispatch implements the Dispatcher/Matcher (spec component C6):
// given a required role, optional task verb, optional knowledge domains,
// and an optional mission id, ranks eligible agents and returns the best
// candidate. Dispatch never raises; for an empty candidate set
// FindBestAgent returns ("", false).
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/helixdispatch/agentspec/internal/agenthost"
	"github.com/helixdispatch/agentspec/internal/obs"
	"github.com/helixdispatch/agentspec/internal/roles"
	"github.com/helixdispatch/agentspec/internal/specialization"
)

// ErrNotFound names the "no eligible candidate" outcome. FindBestAgent does
// not return it; it reports that outcome as ("", false).
var ErrNotFound = errors.New("dispatch: no eligible candidate")

const (
	proficiencyDefault = 50.0

	successWeight    = 0.4
	experienceWeight = 0.2
	qualityWeight    = 0.4
	experienceCap    = 20.0

	domainBonusMax  = 20.0
	missionBonus    = 30.0
)

// Request is the input to Dispatch (spec §4.C6).
type Request struct {
	RoleID    string
	TaskVerb  string // optional; empty means "no verb"
	DomainIDs []string
	MissionID string // optional; empty means "no mission filter"
}

// Dispatcher selects the best agent for a Request from the Specialization
// Store.
type Dispatcher struct {
	store    *specialization.Store
	roles    *roles.Registry
	resolver agenthost.Resolver
	log      *logrus.Logger
	obs      *obs.Metrics
}

// New constructs a Dispatcher.
func New(store *specialization.Store, roleRegistry *roles.Registry, resolver agenthost.Resolver, log *logrus.Logger, metrics *obs.Metrics) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{store: store, roles: roleRegistry, resolver: resolver, log: log, obs: metrics}
}

type candidate struct {
	spec  *specialization.Specialization
	agent agenthost.Agent
	score float64
}

// FindBestAgent ranks eligible agents for req and returns the winner's
// agent id, or ("", false) if none are eligible (spec §4.C6, §7: dispatch
// never raises).
func (d *Dispatcher) FindBestAgent(ctx context.Context, req Request) (string, bool) {
	start := time.Now()
	role, roleResolved := d.roles.GetRole(req.RoleID)

	candidates := d.candidateSet(req.RoleID, roleResolved)
	candidates = d.filterByMission(candidates, req.MissionID)

	var best *candidate
	for i := range candidates {
		c := &candidates[i]
		c.score = d.score(c, req, role)
		if best == nil || c.score > best.score ||
			(c.score == best.score && c.spec.Seq() < best.spec.Seq()) {
			best = c
		}
	}

	d.observe(req.RoleID, best != nil, start)

	if best == nil {
		return "", false
	}
	return best.spec.AgentID, true
}

// candidateSet builds step 1 of spec §4.C6: specializations matching
// roleID whose agent is known, resolvable, and not in a terminal state. A
// role that no longer resolves in the Role Registry excludes every
// candidate outright (spec §3, §4.C6 edge cases) — this is the case a
// persisted specialization reaches when it references a role id that was
// never re-registered after a process restart, since dynamically
// registered roles are not themselves persisted.
func (d *Dispatcher) candidateSet(roleID string, roleResolved bool) []candidate {
	if !roleResolved {
		d.log.WithField("role_id", roleID).Debug("dispatch: dropping all candidates, role unresolved")
		return nil
	}

	specs := d.store.ListByRole(roleID)
	out := make([]candidate, 0, len(specs))

	for _, spec := range specs {
		if d.resolver == nil {
			continue
		}
		agent, ok := d.resolver.Agent(spec.AgentID)
		if !ok {
			d.log.WithField("agent_id", spec.AgentID).Debug("dispatch: dropping candidate, agent reference unresolved")
			continue
		}
		if agent.Status().Terminal() {
			continue
		}
		out = append(out, candidate{spec: spec, agent: agent})
	}
	return out
}

// filterByMission applies spec §4.C6 step 2: keep only candidates whose
// agent's mission matches, falling back to the unfiltered set if that
// leaves nothing.
func (d *Dispatcher) filterByMission(candidates []candidate, missionID string) []candidate {
	if missionID == "" {
		return candidates
	}
	filtered := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.agent.MissionID() == missionID {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return candidates
	}
	return filtered
}

// score computes spec §4.C6 step 3: proficiency + domain bonus + mission
// bonus. role is always resolved by the time a candidate reaches scoring —
// candidateSet already excluded every candidate for an unresolved role.
func (d *Dispatcher) score(c *candidate, req Request, role roles.Role) float64 {
	score := proficiency(c.spec, req.TaskVerb)

	if len(req.DomainIDs) > 0 {
		effectiveDomains := c.spec.EffectiveKnowledgeDomains(role.KnowledgeDomains)
		matches := countMatches(req.DomainIDs, effectiveDomains)
		score += (float64(matches) / float64(len(req.DomainIDs))) * domainBonusMax
	}

	if req.MissionID != "" && c.agent.MissionID() == req.MissionID {
		score += missionBonus
	}

	return score
}

// proficiency computes spec §4.C6 step 3's per-task-verb proficiency
// formula, defaulting to 50 when there is no verb or no recorded metrics
// for it.
func proficiency(spec *specialization.Specialization, taskVerb string) float64 {
	if taskVerb == "" {
		return proficiencyDefault
	}
	m, ok := spec.Metrics(taskVerb)
	if !ok {
		return proficiencyDefault
	}

	successFactor := m.SuccessRate / 100
	experienceFactor := float64(m.TaskCount) / experienceCap
	if experienceFactor > 1 {
		experienceFactor = 1
	}
	qualityFactor := m.QualityScore / 100

	raw := (successWeight*successFactor + experienceWeight*experienceFactor + qualityWeight*qualityFactor) * 100
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return raw
}

func countMatches(requested, available []string) int {
	set := make(map[string]struct{}, len(available))
	for _, id := range available {
		set[id] = struct{}{}
	}
	count := 0
	for _, id := range requested {
		if _, ok := set[id]; ok {
			count++
		}
	}
	return count
}

func (d *Dispatcher) observe(roleID string, found bool, start time.Time) {
	if d.obs == nil {
		return
	}
	outcome := "not_found"
	if found {
		outcome = "found"
	}
	d.obs.DispatchTotal.WithLabelValues(roleID, outcome).Inc()
	d.obs.DispatchDuration.WithLabelValues(roleID).Observe(time.Since(start).Seconds())
}
