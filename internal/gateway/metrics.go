package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the gateway's Prometheus collectors on a private registry
// so multiple Gateway instances (tests included) never collide.
type metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	toolCalls     *prometheus.CounterVec
	activeStreams prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchloop",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Query requests by endpoint and outcome.",
		}, []string{"endpoint", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "searchloop",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "End-to-end query latency.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"endpoint"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchloop",
			Subsystem: "agent",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool and outcome.",
		}, []string{"tool", "status"}),
		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "searchloop",
			Subsystem: "gateway",
			Name:      "active_streams",
			Help:      "Streaming queries currently in flight.",
		}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
