// Package metrics defines and registers all custom Prometheus metrics for the
// user-management API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation and exposed through the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userapi"

// UsersCreatedTotal counts user records created lazily by the enrichment
// filter on a caller's first authenticated request.
var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of user records created by first-touch enrichment.",
	},
)

// RequestsRejectedTotal counts requests short-circuited by the identity
// pipeline before reaching a handler.
// Label:
//   - reason: "missing_sub", "locked_out", or "missing_claim"
var RequestsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_rejected_total",
		Help:      "Total number of requests rejected by the identity pipeline, by reason.",
	},
	[]string{"reason"},
)

// EnrichmentDuration measures how long resolving (or creating) the caller's
// user record takes, store calls included.
var EnrichmentDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "enrichment_duration_seconds",
		Help:      "Duration of per-request identity enrichment.",
		Buckets:   prometheus.DefBuckets,
	},
)

// UserCacheTotal counts user-record cache lookups.
// Label:
//   - result: "hit" or "miss"
var UserCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_cache_total",
		Help:      "Total number of user-record cache lookups, by result (hit/miss).",
	},
	[]string{"result"},
)
