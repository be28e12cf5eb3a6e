package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"targetmcp/internal/domain"
)

type PrometheusMetrics struct {
	toolCalls       *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	sessionsOpened  prometheus.Counter
	activeSessions  prometheus.Gauge
	discoveredTools prometheus.Gauge
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "targetmcp_tool_calls_total",
				Help: "Total number of tool calls by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "targetmcp_tool_call_duration_seconds",
				Help:    "Duration of tool calls in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tool", "outcome"},
		),
		sessionsOpened: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "targetmcp_sessions_opened_total",
				Help: "Total number of event-stream sessions opened",
			},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "targetmcp_active_sessions",
				Help: "Current number of live event-stream sessions",
			},
		),
		discoveredTools: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "targetmcp_discovered_tools",
				Help: "Number of tools in the registry",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveToolCall(metric domain.CallMetric) {
	outcome := string(metric.Outcome)
	if outcome == "" {
		outcome = string(domain.CallOutcomeSuccess)
	}
	p.toolCalls.WithLabelValues(metric.Tool, outcome).Inc()
	p.toolDuration.WithLabelValues(metric.Tool, outcome).Observe(metric.Duration.Seconds())
}

func (p *PrometheusMetrics) ObserveSessionOpened() {
	p.sessionsOpened.Inc()
}

func (p *PrometheusMetrics) SetActiveSessions(count int) {
	p.activeSessions.Set(float64(count))
}

func (p *PrometheusMetrics) SetDiscoveredTools(count int) {
	p.discoveredTools.Set(float64(count))
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
