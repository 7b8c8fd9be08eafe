// Package metrics defines all custom Prometheus metrics for the asset
// tracking server. It is the single source of truth for metric names, labels,
// and help strings; everything registers with the default registry through
// promauto at init time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "assettrack"

// ── Dispatch metrics ──────────────────────────────────────────────────────────

// MessagesDispatchedTotal counts jobs that produced an outbound message.
// Label:
//   - type: the inbound message type (e.g. "Item.Create")
var MessagesDispatchedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_dispatched_total",
		Help:      "Total number of inbound messages handled successfully.",
	},
	[]string{"type"},
)

// MessagesDroppedTotal counts jobs that produced no outbound message.
// Label:
//   - reason: "unrecognized_type", "malformed", "handler_error", "panic"
var MessagesDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_dropped_total",
		Help:      "Total number of inbound messages dropped without a reply.",
	},
	[]string{"reason"},
)

// DispatchQueueDepth tracks the number of jobs waiting in the dispatcher queue.
var DispatchQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dispatch_queue_depth",
		Help:      "Current number of jobs pending in the dispatcher queue.",
	},
)

// DispatchDuration measures how long one job takes from dequeue to reply.
// Label:
//   - type: the inbound message type, or "unknown" when it never decoded
var DispatchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dispatch_duration_seconds",
		Help:      "Duration of job handling from dequeue to reply delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)

// ── Scan metrics ──────────────────────────────────────────────────────────────

// ScansRecordedTotal counts item reads appended to the scan log.
var ScansRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_recorded_total",
		Help:      "Total number of device scans written to the read log.",
	},
)

// ScansSuppressedTotal counts scans discarded before a row was written.
// Label:
//   - reason: "debounced" or "unknown_tag"
var ScansSuppressedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_suppressed_total",
		Help:      "Total number of device scans discarded without a write.",
	},
	[]string{"reason"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsActive tracks the number of open client websocket sessions.
var SessionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Current number of open client sessions.",
	},
)

// HandshakesRejectedTotal counts connection attempts refused before a session
// was created.
var HandshakesRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handshakes_rejected_total",
		Help:      "Total number of websocket handshakes rejected for missing or invalid tokens.",
	},
)

// BrokerPublicationsTotal counts scan publications forwarded by the bridge.
var BrokerPublicationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broker_publications_total",
		Help:      "Total number of device publications bridged into the dispatcher.",
	},
)
