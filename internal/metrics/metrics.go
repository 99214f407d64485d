// Package metrics defines and registers all custom Prometheus metrics for the
// product catalog service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and are served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ── Product lifecycle metrics ─────────────────────────────────────────────────

// ProductMutationsTotal counts successful lifecycle mutations.
// Label:
//   - action: "create", "update", "remove" or "restore"
var ProductMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Total number of successful product lifecycle mutations, by action.",
	},
	[]string{"action"},
)

// ProductRejectionsTotal counts mutations refused by the lifecycle state machine.
// Label:
//   - action: the refused action (e.g. "restore" on an active product)
var ProductRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_rejections_total",
		Help:      "Total number of product mutations rejected by the lifecycle state machine.",
	},
	[]string{"action"},
)

// EnrichmentDegradedTotal counts list responses where at least one user
// reference could not be resolved and was rendered as null.
var EnrichmentDegradedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichment_degraded_total",
		Help:      "Total number of product pages served with partially resolved user summaries.",
	},
)

// ── User service metrics ──────────────────────────────────────────────────────

// UserSummaryRequestDuration measures one request-reply round trip to the user service.
// Label:
//   - outcome: "ok", "not_found" or "unavailable"
var UserSummaryRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "user_summary_request_duration_seconds",
		Help:      "Duration of user summary requests, by outcome.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ── Message transport metrics ─────────────────────────────────────────────────

// MessagesHandledTotal counts inbound messages answered by the service.
// Labels:
//   - pattern: the message pattern (e.g. "product.find.id")
//   - status: the reply status code ("200", "404", ...)
var MessagesHandledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_handled_total",
		Help:      "Total number of inbound messages handled, by pattern and reply status.",
	},
	[]string{"pattern", "status"},
)

// MessagesQueueDepth tracks the current number of messages waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MessagesQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "messages_queue_depth",
		Help:      "Current number of messages pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
