// Package metrics holds the Prometheus collectors for challenge
// participation and lifecycle. A nil *Metrics is valid and records nothing,
// so engines can be built without a registry in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "docthrough"

type Metrics struct {
	submissions          *prometheus.CounterVec
	likeToggles          *prometheus.CounterVec
	transitions          *prometheus.CounterVec
	sweeps               prometheus.Counter
	sweepFailures        prometheus.Counter
	sweepDuration        prometheus.Histogram
	deadlineNotices      prometheus.Counter
	notificationFailures *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// Registering twice with the same registry panics, so call it once per
// registry (bootstrap does this at startup).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.submissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attend_submissions_total",
			Help:      "attend submissions by result (final, draft, conflict, full, closed, error)",
		},
		[]string{"result"},
	)
	m.likeToggles = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "like_toggles_total",
			Help:      "like toggles by result (added, removed)",
		},
		[]string{"result"},
	)
	m.transitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenge_transitions_total",
			Help:      "challenge status transitions by target status",
		},
		[]string{"status"},
	)
	m.sweeps = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deadline_sweeps_total",
			Help:      "deadline sweep ticks run",
		},
	)
	m.sweepFailures = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deadline_sweep_failures_total",
			Help:      "challenges that failed to expire during a sweep",
		},
	)
	m.sweepDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deadline_sweep_duration_seconds",
			Help:      "wall time of one deadline sweep",
			Buckets:   prometheus.DefBuckets,
		},
	)
	m.deadlineNotices = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deadline_notifications_total",
			Help:      "deadline notifications delivered to participants",
		},
	)
	m.notificationFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "notifications that could not be delivered, by category",
		},
		[]string{"category"},
	)
	return m
}

func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) LikeToggle(result string) {
	if m == nil {
		return
	}
	m.likeToggles.WithLabelValues(result).Inc()
}

func (m *Metrics) Transition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

// Sweep records one finished sweep tick.
func (m *Metrics) Sweep(took time.Duration, failures int) {
	if m == nil {
		return
	}
	m.sweeps.Inc()
	m.sweepDuration.Observe(took.Seconds())
	if failures > 0 {
		m.sweepFailures.Add(float64(failures))
	}
}

func (m *Metrics) DeadlineNotices(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.deadlineNotices.Add(float64(n))
}

func (m *Metrics) NotificationFailure(category string) {
	if m == nil {
		return
	}
	m.notificationFailures.WithLabelValues(category).Inc()
}
