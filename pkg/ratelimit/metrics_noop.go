package ratelimit

import "time"

// NoOpMetrics discards all measurements.
type NoOpMetrics struct{}

func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

func (m *NoOpMetrics) RecordAllowed(limiterType, endpoint string) {}

func (m *NoOpMetrics) RecordDenied(limiterType, endpoint string) {}

func (m *NoOpMetrics) RecordFailOpen(limiterType, endpoint string) {}

func (m *NoOpMetrics) RecordCheckDuration(limiterType string, duration time.Duration) {}
