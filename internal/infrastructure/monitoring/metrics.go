package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// Backend transport
	BackendCalls    *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec

	// Listing engine
	ListingFetches *prometheus.CounterVec
	StaleResults   prometheus.Counter

	// Dispatch
	Operations    *prometheus.CounterVec
	Confirmations *prometheus.CounterVec

	// Bridges
	Uploads       *prometheus.CounterVec
	UploadedBytes prometheus.Counter

	// Navigation
	Navigations prometheus.Counter
}

// NewMetrics registers the collectors on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BackendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileflex_backend_calls_total",
				Help: "Total number of backend calls",
			},
			[]string{"endpoint", "status"},
		),
		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileflex_backend_call_duration_seconds",
				Help:    "Backend call duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15, 60, 300},
			},
			[]string{"endpoint"},
		),
		ListingFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileflex_listing_fetches_total",
				Help: "Listing page fetches by browsing mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		StaleResults: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fileflex_listing_stale_results_total",
				Help: "Listing results dropped because a navigation superseded them",
			},
		),
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileflex_operations_total",
				Help: "Operations dispatched by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		Confirmations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileflex_confirmations_total",
				Help: "Destructive operation confirmations by outcome",
			},
			[]string{"outcome"},
		),
		Uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileflex_uploads_total",
				Help: "Uploads by outcome",
			},
			[]string{"outcome"},
		),
		UploadedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fileflex_uploaded_bytes_total",
				Help: "Bytes handed to the backend by uploads",
			},
		),
		Navigations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fileflex_navigations_total",
				Help: "Total number of navigations",
			},
		),
	}
}

// RecordBackendCall records a backend round trip.
func (m *Metrics) RecordBackendCall(endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.BackendCalls.WithLabelValues(endpoint, status).Inc()
	m.BackendDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordListingFetch records one listing page fetch.
func (m *Metrics) RecordListingFetch(mode, outcome string) {
	if m == nil {
		return
	}
	m.ListingFetches.WithLabelValues(mode, outcome).Inc()
}

// IncStaleResults counts a dropped stale listing result.
func (m *Metrics) IncStaleResults() {
	if m == nil {
		return
	}
	m.StaleResults.Inc()
}

// RecordOperation records an operation dispatch.
func (m *Metrics) RecordOperation(opType, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(opType, outcome).Inc()
}

// RecordConfirmation records the answer to a confirmation prompt.
func (m *Metrics) RecordConfirmation(accepted bool) {
	if m == nil {
		return
	}
	outcome := "declined"
	if accepted {
		outcome = "accepted"
	}
	m.Confirmations.WithLabelValues(outcome).Inc()
}

// RecordUpload records an upload outcome and the bytes sent.
func (m *Metrics) RecordUpload(outcome string, bytes int64) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		m.UploadedBytes.Add(float64(bytes))
	}
}

// IncNavigations counts a navigation.
func (m *Metrics) IncNavigations() {
	if m == nil {
		return
	}
	m.Navigations.Inc()
}
