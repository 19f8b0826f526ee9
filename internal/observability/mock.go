package observability

import "time"

// MockMetricsRegistry is a no-op implementation of MetricsRegistry for tests.
type MockMetricsRegistry struct{}

func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

func (m *MockMetricsRegistry) IncrementSelections(outcome string)            {}
func (m *MockMetricsRegistry) RecordSelectionDuration(duration time.Duration) {}

func (m *MockMetricsRegistry) IncrementEvent(eventType string) {}
func (m *MockMetricsRegistry) IncrementAnalyticsErrors()       {}

func (m *MockMetricsRegistry) IncrementInvalidations() {}
