// Package metrics holds the Prometheus collectors for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Extraction failure kinds.
const (
	FailureStructure = "structure"
	FailureOther     = "other"
)

// Metrics is a set of collectors registered on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	pagesFetched    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	failures        *prometheus.CounterVec
	eventsAssembled prometheus.Counter
	scrapeDuration  *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
	}

	m.pagesFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fb_events",
		Name:      "pages_fetched_total",
		Help:      "Pages fetched from Facebook, by page kind",
	}, []string{"kind"})
	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fb_events",
		Name:      "cache_lookups_total",
		Help:      "Memo cache lookups, by result",
	}, []string{"result"})
	m.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fb_events",
		Name:      "extraction_failures_total",
		Help:      "Event pages that could not be turned into events, by failure kind",
	}, []string{"kind"})
	m.eventsAssembled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fb_events",
		Name:      "events_assembled_total",
		Help:      "Generic events assembled from event pages",
	})
	m.scrapeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fb_events",
		Name:      "scrape_duration_seconds",
		Help:      "Time to fetch (or load from cache) and extract one page",
		Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"kind"})

	m.Registry.MustRegister(
		m.pagesFetched,
		m.cacheLookups,
		m.failures,
		m.eventsAssembled,
		m.scrapeDuration,
	)

	return m
}

// PageFetched counts a page fetched over the network.
func (m *Metrics) PageFetched(kind string) {
	m.pagesFetched.WithLabelValues(kind).Inc()
}

// CacheLookup counts a memo cache lookup with the given result.
func (m *Metrics) CacheLookup(result string) {
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ExtractionFailed counts a page that failed to yield an event.
func (m *Metrics) ExtractionFailed(kind string) {
	m.failures.WithLabelValues(kind).Inc()
}

// EventAssembled counts a successfully built event.
func (m *Metrics) EventAssembled() {
	m.eventsAssembled.Inc()
}

// ObserveScrape records how long handling one page took.
func (m *Metrics) ObserveScrape(kind string, d time.Duration) {
	m.scrapeDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
