package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	BackendOps     *prometheus.CounterVec
	BackendLatency *prometheus.HistogramVec
	DegradedMode   prometheus.Gauge
	MemoryEvents   *prometheus.CounterVec

	latency *opLatencyWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BackendOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_backend_ops_total",
			Help:      "Memory backend calls by operation and result.",
		}, []string{"op", "result"}),
		BackendLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "memory_backend_latency_ms",
			Help:      "Memory backend call latency in milliseconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}, []string{"op"}),
		DegradedMode: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_degraded",
			Help:      "1 when the memory backend fell back to the no-op store.",
		}),
		MemoryEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_events_total",
			Help:      "Caller-facing memory operations by tier and event.",
		}, []string{"tier", "event"}),
		latency: newOpLatencyWindow(512),
	}
}

func (m *Metrics) SetDegraded(degraded bool) {
	if degraded {
		m.DegradedMode.Set(1)
		return
	}
	m.DegradedMode.Set(0)
}

func (m *Metrics) ObserveBackendOp(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		m.latency.ObserveError(op)
	}
	ms := float64(d.Microseconds()) / 1000
	m.BackendOps.WithLabelValues(op, result).Inc()
	m.BackendLatency.WithLabelValues(op).Observe(ms)
	m.latency.Observe(op, ms)
}

func (m *Metrics) MemoryEvent(tier, event string) {
	m.MemoryEvents.WithLabelValues(tier, event).Inc()
}

func (m *Metrics) SnapshotBackendLatency() LatencySnapshot {
	return m.latency.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
