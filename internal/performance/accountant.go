// Package performance implements the Performance Accountant (spec
// component C5): updates per-task metrics on completion events and records
// critic-feedback quality scores, per the exact weighted-average rules in
// spec §4.C5.
package performance

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/helixdispatch/agentspec/internal/obs"
	"github.com/helixdispatch/agentspec/internal/specialization"
)

const (
	successWeight  = 0.1
	feedbackWeight = 0.25
)

// Clock lets tests control "now"; production uses time.Now.
type Clock func() time.Time

// Accountant updates TaskPerformanceMetrics on the Specialization Store.
type Accountant struct {
	store *specialization.Store
	now   Clock
	log   *logrus.Logger
	obs   *obs.Metrics
}

// New constructs an Accountant over store. now defaults to time.Now.
func New(store *specialization.Store, now Clock, log *logrus.Logger, metrics *obs.Metrics) *Accountant {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Accountant{store: store, now: now, log: log, obs: metrics}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// RecordTaskCompletion applies the task-completion update rule (spec
// §4.C5): success_rate is an exponential moving average with weight 0.1,
// task_count increments, average_task_duration is the cumulative mean.
func (a *Accountant) RecordTaskCompletion(ctx context.Context, agentID, taskVerb string, success bool, durationSeconds float64) {
	now := a.now()

	a.store.Mutate(ctx, agentID, func(spec *specialization.Specialization) *specialization.Specialization {
		m, exists := spec.Metrics(taskVerb)
		if !exists {
			m = specialization.TaskPerformanceMetrics{
				SuccessRate:         0,
				TaskCount:           0,
				AverageTaskDuration: 0,
				QualityScore:        50,
				LastEvaluation:      now,
			}
		}

		successValue := 0.0
		if success {
			successValue = 100.0
		}
		m.SuccessRate = clamp(m.SuccessRate*(1-successWeight) + successValue*successWeight)
		m.TaskCount++
		m.AverageTaskDuration = (m.AverageTaskDuration*float64(m.TaskCount-1) + durationSeconds) / float64(m.TaskCount)
		m.LastEvaluation = now

		spec.PerformanceByTask[taskVerb] = m
		return spec
	})

	a.log.WithFields(logrus.Fields{
		"component": "performance.accountant", "agent_id": agentID, "task_verb": taskVerb, "success": success,
	}).Debug("recorded task completion")
	if a.obs != nil {
		a.obs.AccountantUpdates.WithLabelValues("completion").Inc()
	}
}

// RecordFeedback applies the critic-feedback update rule (spec §4.C5):
// quality_score is an exponential moving average with weight 0.25. If no
// metrics exist yet for the verb, they are seeded as
// {success_rate: 75, task_count: 1, average_task_duration: 0,
// quality_score: 50} before the feedback weighting is applied — the
// source-compatible seed mandated by spec §9, despite the task_count: 1
// inflating the experience factor the Dispatcher later reads.
func (a *Accountant) RecordFeedback(ctx context.Context, agentID, taskVerb string, qualityScore float64) {
	now := a.now()

	a.store.Mutate(ctx, agentID, func(spec *specialization.Specialization) *specialization.Specialization {
		m, exists := spec.Metrics(taskVerb)
		if !exists {
			m = specialization.TaskPerformanceMetrics{
				SuccessRate:         75,
				TaskCount:           1,
				AverageTaskDuration: 0,
				QualityScore:        50,
			}
		}

		m.QualityScore = clamp(m.QualityScore*(1-feedbackWeight) + qualityScore*feedbackWeight)
		m.LastEvaluation = now

		spec.PerformanceByTask[taskVerb] = m
		return spec
	})

	a.log.WithFields(logrus.Fields{
		"component": "performance.accountant", "agent_id": agentID, "task_verb": taskVerb, "quality_score": qualityScore,
	}).Debug("recorded feedback")
	if a.obs != nil {
		a.obs.AccountantUpdates.WithLabelValues("feedback").Inc()
	}
}
