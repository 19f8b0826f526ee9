package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banner_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "banner_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// selection outcomes: match or no_match
	SelectionCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banner_selections_total",
			Help: "Total banner selections by outcome",
		},
		[]string{"outcome"},
	)

	// time spent in the selection pass
	SelectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "banner_selection_duration_seconds",
			Help:    "Duration of the banner selection pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	// analytics events recorded, labelled by type
	EventCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banner_events_total",
			Help: "Total analytics events recorded",
		},
		[]string{"type"},
	)

	// errors while persisting analytics events
	AnalyticsErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "banner_analytics_errors_total",
			Help: "Total analytics persistence errors",
		},
	)

	// cache-tag invalidations published after banner writes
	InvalidationCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "banner_invalidations_total",
			Help: "Total cache tag invalidations published",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		SelectionCount,
		SelectionDuration,
		EventCount,
		AnalyticsErrors,
		InvalidationCount,
	)
}
