// Package obs provides the ambient Prometheus instrumentation for the
// dispatch core. It is observation-only: nothing here ever influences
// control flow, and a nil *Metrics is always safe to pass around (every
// caller nil-checks before use, mirroring the teacher's optional
// discoverer/cache collaborators).
package obs

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters/histograms the core emits.
type Metrics struct {
	DispatchTotal         *prometheus.CounterVec
	DispatchDuration      *prometheus.HistogramVec
	AccountantUpdates     *prometheus.CounterVec
	AssignmentTotal       *prometheus.CounterVec
}

// NewMetrics registers and returns a Metrics bundle on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentspec_dispatch_total",
			Help: "Dispatch attempts by role and outcome (found, not_found).",
		}, []string{"role_id", "outcome"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentspec_dispatch_duration_seconds",
			Help:    "Wall-clock time to rank and select a dispatch candidate.",
			Buckets: prometheus.DefBuckets,
		}, []string{"role_id"}),
		AccountantUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentspec_accountant_updates_total",
			Help: "Performance Accountant updates by kind (completion, feedback).",
		}, []string{"kind"}),
		AssignmentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentspec_assignment_total",
			Help: "Assignment Controller outcomes (assigned, role_not_found, agent_not_found, apply_failed).",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.DispatchTotal, m.DispatchDuration, m.AccountantUpdates, m.AssignmentTotal)
	return m
}
