// Package metrics defines and registers all custom Prometheus metrics for the
// enforcement API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smartlpd"

// ── Detection metrics ─────────────────────────────────────────────────────────

// DetectionsTotal counts plate detections.
// Labels:
//   - mode: "ml" when the recognition service answered, "fallback" otherwise
//   - outcome: "recognized", "no_result", or "unavailable"
var DetectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detections_total",
		Help:      "Total number of plate detections, by mode and outcome.",
	},
	[]string{"mode", "outcome"},
)

// MLRequestDuration measures round trips to the recognition service.
var MLRequestDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ml_request_duration_seconds",
		Help:      "Duration of calls to the plate recognition service.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Fine metrics ──────────────────────────────────────────────────────────────

// FinesIssuedTotal counts issued fines.
// Label:
//   - issuer: "authority" or "system"
var FinesIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fines_issued_total",
		Help:      "Total number of fines issued, by issuer kind.",
	},
	[]string{"issuer"},
)

// FineStatusChangesTotal counts authority status updates, by new status.
var FineStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fine_status_changes_total",
		Help:      "Total number of fine status changes, by resulting status.",
	},
	[]string{"status"},
)

// FinePaymentsTotal counts payment attempts.
// Label:
//   - result: "paid" or "rejected"
var FinePaymentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fine_payments_total",
		Help:      "Total number of fine payment attempts, by result.",
	},
	[]string{"result"},
)

// StatsCacheTotal counts stats cache lookups.
// Label:
//   - result: "hit", "miss", or "error"
var StatsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "Total number of fine stats cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// FineEventsProcessedTotal counts fine events that completed processing.
var FineEventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fine_events_processed_total",
		Help:      "Total number of fine events successfully processed, by type.",
	},
	[]string{"type"},
)

// FineEventsErrorsTotal counts fine event failures.
// Label:
//   - stage: "audit", "publish", or "dropped" (not accepted by the dispatcher)
var FineEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fine_events_errors_total",
		Help:      "Total number of fine event processing failures, by stage.",
	},
	[]string{"stage"},
)

// FineEventsQueueDepth tracks pending events in each dispatcher worker channel.
var FineEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fine_events_queue_depth",
		Help:      "Current number of fine events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// FineEventProcessingDuration measures a single event from dequeue to publish.
var FineEventProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fine_event_processing_duration_seconds",
		Help:      "Duration of fine event processing from dequeue to publish.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// RateLimitedTotal counts requests refused by the rate limiter, by route group.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"route"},
)
