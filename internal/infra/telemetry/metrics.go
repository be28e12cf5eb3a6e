package telemetry

import "targetmcp/internal/domain"

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveToolCall(_ domain.CallMetric) {}

func (n *NoopMetrics) ObserveSessionOpened() {}

func (n *NoopMetrics) SetActiveSessions(_ int) {}

func (n *NoopMetrics) SetDiscoveredTools(_ int) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
