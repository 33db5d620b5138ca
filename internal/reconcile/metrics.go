package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons used by the droppedTotal counter.
const (
	dropUnknownRoute = "unknown_route"
	dropMissingKey   = "missing_key"
	dropNotFound     = "not_found"
	dropStale        = "stale"
	dropNoop         = "noop"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reconciler",
		Name:      "events_total",
		Help:      "Engine events dispatched, by topic.",
	}, []string{"topic"})

	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reconciler",
		Name:      "events_dropped_total",
		Help:      "Events dropped as benign no-ops, by topic and reason.",
	}, []string{"topic", "reason"})

	failedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reconciler",
		Name:      "events_failed_total",
		Help:      "Events whose handler failed, by topic.",
	}, []string{"topic"})

	processSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reconciler",
		Name:      "event_process_seconds",
		Help:      "Wall time spent processing one event.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"topic"})
)

// observeProcessing starts a per-event timer; call the result when done.
func observeProcessing(topic string) func() {
	t := prometheus.NewTimer(processSeconds.WithLabelValues(topic))
	return func() { t.ObserveDuration() }
}
