package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records backend traffic and catalog controller behavior.
type StorefrontMetrics struct {
	backendDuration *prometheus.HistogramVec
	backendFailure  *prometheus.CounterVec
	staleResponses  *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	sessions        prometheus.Gauge
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_backend_request_duration_seconds",
		Help:    "Duration of Balonis API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	backendFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_backend_request_failures_total",
		Help: "Failed Balonis API requests.",
	}, []string{"endpoint"})
	staleResponses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_catalog_stale_responses_total",
		Help: "Catalog responses discarded because a newer request superseded them.",
	}, []string{"kind"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_fallback_used_total",
		Help: "Home page sections served from a fallback endpoint.",
	}, []string{"resource"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_catalog_sessions",
		Help: "Mounted catalog controllers.",
	})
	reg.MustRegister(backendDuration, backendFailure, staleResponses, fallbacks, sessions)
	return &StorefrontMetrics{
		backendDuration: backendDuration,
		backendFailure:  backendFailure,
		staleResponses:  staleResponses,
		fallbacks:       fallbacks,
		sessions:        sessions,
	}
}

// ObserveBackendRequest records the duration and outcome of one API call.
func (m *StorefrontMetrics) ObserveBackendRequest(endpoint string, duration time.Duration, err error) {
	if m == nil || m.backendDuration == nil {
		return
	}
	label := normalizeLabel(endpoint)
	m.backendDuration.WithLabelValues(label).Observe(duration.Seconds())
	if err != nil {
		m.backendFailure.WithLabelValues(label).Inc()
	}
}

// IncStaleResponse counts a discarded out-of-date response.
func (m *StorefrontMetrics) IncStaleResponse(kind string) {
	if m == nil || m.staleResponses == nil {
		return
	}
	m.staleResponses.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncFallback counts a section served by its fallback endpoint.
func (m *StorefrontMetrics) IncFallback(resource string) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.WithLabelValues(normalizeLabel(resource)).Inc()
}

// SessionOpened and SessionClosed track the live session gauge.
func (m *StorefrontMetrics) SessionOpened() {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Inc()
}

func (m *StorefrontMetrics) SessionClosed() {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Dec()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
