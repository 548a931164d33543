// Package obs holds the Prometheus collectors for granule searches and the
// HTTP surface. A nil *Metrics is valid and records nothing.
package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SearchesTotal  *prometheus.CounterVec
	SearchErrors   *prometheus.CounterVec
	PagesFetched   *prometheus.CounterVec
	EntriesFetched *prometheus.CounterVec
	PageLatency    *prometheus.HistogramVec
	GranulesMerged *prometheus.CounterVec

	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	Registry            *prometheus.Registry
}

// NewMetrics creates the collectors and registers them on r.
func NewMetrics(r *prometheus.Registry) *Metrics {
	m := &Metrics{
		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "granule_searches_total",
			Help: "Granule searches started, by dataset",
		}, []string{"dataset"}),
		SearchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "granule_search_errors_total",
			Help: "Granule searches that failed, by error kind",
		}, []string{"kind"}),
		PagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "granule_pages_fetched_total",
			Help: "Result pages fetched from the search service",
		}, []string{"dataset"}),
		EntriesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "granule_entries_fetched_total",
			Help: "Raw granule entries received before merging",
		}, []string{"dataset"}),
		PageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "granule_page_fetch_seconds",
			Help:    "Latency of one result page fetch",
			Buckets: prometheus.DefBuckets,
		}, []string{"dataset"}),
		GranulesMerged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "granule_duplicates_merged_total",
			Help: "Raw entries folded into an existing granule record",
		}, []string{"dataset"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		Registry: r,
	}

	r.MustRegister(
		m.SearchesTotal,
		m.SearchErrors,
		m.PagesFetched,
		m.EntriesFetched,
		m.PageLatency,
		m.GranulesMerged,
		m.HTTPRequestDuration,
		m.HTTPRequestsTotal,
	)
	return m
}

func (m *Metrics) IncSearches(dataset string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(dataset).Inc()
}

func (m *Metrics) IncSearchError(kind string) {
	if m == nil {
		return
	}
	m.SearchErrors.WithLabelValues(kind).Inc()
}

// ObservePage records one fetched page.
func (m *Metrics) ObservePage(dataset string, entries int, d time.Duration) {
	if m == nil {
		return
	}
	m.PagesFetched.WithLabelValues(dataset).Inc()
	m.EntriesFetched.WithLabelValues(dataset).Add(float64(entries))
	m.PageLatency.WithLabelValues(dataset).Observe(d.Seconds())
}

func (m *Metrics) AddMerged(dataset string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.GranulesMerged.WithLabelValues(dataset).Add(float64(n))
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
