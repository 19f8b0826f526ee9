package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics so
// components take a dependency instead of touching the global Prometheus
// metrics directly.
type MetricsRegistry interface {
	// HTTP request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Selection metrics
	IncrementSelections(outcome string)
	RecordSelectionDuration(duration time.Duration)

	// Analytics metrics
	IncrementEvent(eventType string)
	IncrementAnalyticsErrors()

	// Cache invalidation metrics
	IncrementInvalidations()
}

// PrometheusRegistry implements MetricsRegistry on the package-level
// Prometheus metrics.
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry.
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementSelections(outcome string) {
	SelectionCount.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) RecordSelectionDuration(duration time.Duration) {
	SelectionDuration.Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementEvent(eventType string) {
	EventCount.WithLabelValues(eventType).Inc()
}

func (r *PrometheusRegistry) IncrementAnalyticsErrors() {
	AnalyticsErrors.Inc()
}

func (r *PrometheusRegistry) IncrementInvalidations() {
	InvalidationCount.Inc()
}
