// Package specialization owns the per-agent specialization record: the
// binding of one agent to one role, its per-task performance history, and
// any per-agent overrides of the role's defaults. It is the Specialization
// Store (spec component C4) plus the shared data model (spec §3).
package specialization

import (
	"errors"
	"slices"
	"time"
)

// ErrEmptyAgentID is returned by New when agentID is empty.
var ErrEmptyAgentID = errors.New("specialization: agent_id must not be empty")

// ErrEmptyRoleID is returned by New when roleID is empty.
var ErrEmptyRoleID = errors.New("specialization: role_id must not be empty")

// TaskPerformanceMetrics is the per (agent, task-verb) performance record.
type TaskPerformanceMetrics struct {
	SuccessRate          float64   `json:"success_rate"`
	TaskCount            int64     `json:"task_count"`
	AverageTaskDuration  float64   `json:"average_task_duration"`
	LastEvaluation       time.Time `json:"last_evaluation"`
	QualityScore         float64   `json:"quality_score"`
}

func defaultMetrics(now time.Time) TaskPerformanceMetrics {
	return TaskPerformanceMetrics{
		SuccessRate:         0,
		TaskCount:           0,
		AverageTaskDuration: 0,
		QualityScore:        50,
		LastEvaluation:      now,
	}
}

// clamp01to100 clamps v into [0,100].
func clamp01to100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Customizations holds optional per-agent overrides of role defaults. Every
// field is individually optional; a nil/zero-value field means "use the
// role's value".
type Customizations struct {
	Capabilities     []string `json:"capabilities,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	KnowledgeDomains []string `json:"knowledge_domains,omitempty"`
	SystemPrompt     string   `json:"system_prompt,omitempty"`
}

// hasCapabilities reports whether the capability override is set.
func (c *Customizations) hasCapabilities() bool {
	return c != nil && c.Capabilities != nil
}

func (c *Customizations) hasResponsibilities() bool {
	return c != nil && c.Responsibilities != nil
}

func (c *Customizations) hasKnowledgeDomains() bool {
	return c != nil && c.KnowledgeDomains != nil
}

func (c *Customizations) hasSystemPrompt() bool {
	return c != nil && c.SystemPrompt != ""
}

// Specialization is the binding of one agent to one role (spec §3
// "AgentSpecialization"). It is the unit persisted in the
// agent_specializations envelope collection and the unit mutated by every
// task-completion/feedback event.
type Specialization struct {
	AgentID          string                            `json:"agent_id"`
	RoleID           string                             `json:"role_id"`
	AssignedAt       time.Time                          `json:"assigned_at"`
	PerformanceByTask map[string]TaskPerformanceMetrics `json:"performance_by_task"`
	Customizations   *Customizations                    `json:"customizations,omitempty"`

	// seq records insertion order for the Dispatcher's stable tie-break
	// (spec §4.C6 step 4). It is not persisted; the Store assigns it when an
	// agent's record is first stored (hydration, Put or Mutate) and keeps it
	// across later replacements and updates. It is meaningless outside one
	// process's lifetime.
	seq uint64
}

// New constructs a fresh Specialization with empty performance history, as
// the Assignment Controller does on assign() (spec §4.C8 step 3).
func New(agentID, roleID string, customizations *Customizations, now time.Time) (*Specialization, error) {
	if agentID == "" {
		return nil, ErrEmptyAgentID
	}
	if roleID == "" {
		return nil, ErrEmptyRoleID
	}
	return &Specialization{
		AgentID:           agentID,
		RoleID:            roleID,
		AssignedAt:        now,
		PerformanceByTask: make(map[string]TaskPerformanceMetrics),
		Customizations:    customizations,
	}, nil
}

// Seq returns the Store-assigned insertion sequence number used to
// tie-break dispatch scoring (spec §4.C6 step 4). It is zero for
// specializations not yet stored.
func (s *Specialization) Seq() uint64 {
	return s.seq
}

// Metrics returns the metrics for a task verb, and whether they existed.
func (s *Specialization) Metrics(taskVerb string) (TaskPerformanceMetrics, bool) {
	m, ok := s.PerformanceByTask[taskVerb]
	return m, ok
}

// EffectiveCapabilities returns the customization override if set, else the
// role's capabilities. roleCapabilities may be nil if the role did not
// resolve; callers are expected to have already checked role resolution.
func (s *Specialization) EffectiveCapabilities(roleCapabilities []string) []string {
	if s.Customizations.hasCapabilities() {
		return s.Customizations.Capabilities
	}
	return roleCapabilities
}

// EffectiveResponsibilities mirrors EffectiveCapabilities for responsibilities.
func (s *Specialization) EffectiveResponsibilities(roleResponsibilities []string) []string {
	if s.Customizations.hasResponsibilities() {
		return s.Customizations.Responsibilities
	}
	return roleResponsibilities
}

// EffectiveKnowledgeDomains mirrors EffectiveCapabilities for domains.
func (s *Specialization) EffectiveKnowledgeDomains(roleDomains []string) []string {
	if s.Customizations.hasKnowledgeDomains() {
		return s.Customizations.KnowledgeDomains
	}
	return roleDomains
}

// EffectiveSystemPrompt mirrors EffectiveCapabilities for the system prompt.
func (s *Specialization) EffectiveSystemPrompt(roleSystemPrompt string) string {
	if s.Customizations.hasSystemPrompt() {
		return s.Customizations.SystemPrompt
	}
	return roleSystemPrompt
}

// Clone returns a deep-enough copy suitable for handing out of the Store's
// lock (the map, the customizations and their slices are copied;
// TaskPerformanceMetrics are value types so the nested map copy is
// sufficient). A nil customization slice stays nil in the copy.
func (s *Specialization) Clone() *Specialization {
	clone := *s
	clone.PerformanceByTask = make(map[string]TaskPerformanceMetrics, len(s.PerformanceByTask))
	for k, v := range s.PerformanceByTask {
		clone.PerformanceByTask[k] = v
	}
	if s.Customizations != nil {
		custom := *s.Customizations
		custom.Capabilities = slices.Clone(s.Customizations.Capabilities)
		custom.Responsibilities = slices.Clone(s.Customizations.Responsibilities)
		custom.KnowledgeDomains = slices.Clone(s.Customizations.KnowledgeDomains)
		clone.Customizations = &custom
	}
	return &clone
}
