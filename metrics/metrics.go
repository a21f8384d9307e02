// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "league"

// Recorder is the subset of metrics the services report into.
type Recorder interface {
	StatusTransition(from, to, trigger string)
	SweepFinished(duration time.Duration, failed int)
	MatchEventRecorded(eventType string)
	NotificationFailed(kind string)
}

type Collectors struct {
	statusTransitions    *prometheus.CounterVec
	sweepDuration        prometheus.Histogram
	sweepFailures        prometheus.Counter
	matchEvents          *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	return &Collectors{
		statusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournament_status_transitions_total",
			Help:      "Tournament status changes by previous status, new status and trigger (sweep, manual or dates).",
		}, []string{"from", "to", "trigger"}),
		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "status_sweep_duration_seconds",
			Help:      "Duration of tournament status reconciliation sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
		sweepFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_sweep_failures_total",
			Help:      "Tournaments that failed to reconcile during a sweep.",
		}),
		matchEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_events_recorded_total",
			Help:      "Match events recorded by type.",
		}, []string{"type"}),
		notificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notifications that could not be delivered, by kind.",
		}, []string{"kind"}),
	}
}

func (c *Collectors) StatusTransition(from, to, trigger string) {
	c.statusTransitions.WithLabelValues(from, to, trigger).Inc()
}

func (c *Collectors) SweepFinished(duration time.Duration, failed int) {
	c.sweepDuration.Observe(duration.Seconds())
	if failed > 0 {
		c.sweepFailures.Add(float64(failed))
	}
}

func (c *Collectors) MatchEventRecorded(eventType string) {
	c.matchEvents.WithLabelValues(eventType).Inc()
}

func (c *Collectors) NotificationFailed(kind string) {
	c.notificationFailures.WithLabelValues(kind).Inc()
}

// Noop discards everything.
type Noop struct{}

func (Noop) StatusTransition(string, string, string) {}
func (Noop) SweepFinished(time.Duration, int)        {}
func (Noop) MatchEventRecorded(string)               {}
func (Noop) NotificationFailed(string)               {}
