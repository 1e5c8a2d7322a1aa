package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SampleLimit is how many recent durations are retained per operation.
const SampleLimit = 100

// Stats summarizes the retained samples of one operation.
type Stats struct {
	Count int
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Metrics owns a private prometheus registry plus an in-process sample buffer.
type Metrics struct {
	registry *prometheus.Registry

	OperationDuration   *prometheus.HistogramVec
	OperationFailures   *prometheus.CounterVec
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	Notifications       *prometheus.CounterVec

	mu      sync.Mutex
	samples map[string][]time.Duration
}

func New(prefix string) *Metrics {
	if prefix == "" {
		prefix = "stocksence"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_store_operation_duration_seconds",
				Help:    "Duration of store operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_store_operation_failures_total",
				Help: "Total number of failed store operations",
			},
			[]string{"operation"},
		),
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_notifications_total",
				Help: "Total number of user notifications by type",
			},
			[]string{"type"},
		),
		samples: make(map[string][]time.Duration),
	}
}

// ObserveOperation records one store operation duration.
func (m *Metrics) ObserveOperation(name string, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(name).Observe(d.Seconds())
	if failed {
		m.OperationFailures.WithLabelValues(name).Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s := append(m.samples[name], d)
	if len(s) > SampleLimit {
		s = append(s[:0:0], s[len(s)-SampleLimit:]...)
	}
	m.samples[name] = s
}

// RecordNotification counts an emitted notification.
func (m *Metrics) RecordNotification(kind string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HttpRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// Stats returns the summary of the retained samples for name.
func (m *Metrics) Stats(name string) (Stats, bool) {
	if m == nil {
		return Stats{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.samples[name]
	if len(s) == 0 {
		return Stats{}, false
	}
	out := Stats{Count: len(s), Min: s[0], Max: s[0]}
	var total time.Duration
	for _, d := range s {
		total += d
		out.Min = min(out.Min, d)
		out.Max = max(out.Max, d)
	}
	out.Avg = total / time.Duration(len(s))
	return out, true
}

// Prune drops sample buffers for every operation; prometheus series are kept.
func (m *Metrics) Prune() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.samples)
	m.samples = make(map[string][]time.Duration)
	return n
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
