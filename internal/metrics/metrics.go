// Package metrics exposes Prometheus collectors for the scrape pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors on a dedicated registry so tests and
// embedders never fight over the global one.
type Metrics struct {
	Registry       *prometheus.Registry
	ScrapesTotal   *prometheus.CounterVec
	ScrapeDuration prometheus.Histogram
	CacheHitsTotal prometheus.Counter
	RowsWithErrors prometheus.Gauge
}

// New constructs and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	scrapes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upa_scrapes_total",
			Help: "Per-target scrape outcomes.",
		},
		[]string{"target", "outcome"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upa_scrape_duration_seconds",
			Help:    "End-to-end duration of one target's scrape unit.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 15, 30, 60, 90},
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "upa_cache_hits_total",
			Help: "Scrape units satisfied from the TTL cache.",
		},
	)
	rowErrors := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "upa_rows_with_errors",
			Help: "Error-bearing rows in the most recent run.",
		},
	)

	registry.MustRegister(scrapes, duration, cacheHits, rowErrors)

	return &Metrics{
		Registry:       registry,
		ScrapesTotal:   scrapes,
		ScrapeDuration: duration,
		CacheHitsTotal: cacheHits,
		RowsWithErrors: rowErrors,
	}
}

// ObserveScrape records one finished scrape unit.
func (m *Metrics) ObserveScrape(target, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(target, outcome).Inc()
	m.ScrapeDuration.Observe(d.Seconds())
}

// IncCacheHit records a cache-satisfied unit.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// SetRowErrors records how many rows of the last run carried errors.
func (m *Metrics) SetRowErrors(n int) {
	if m == nil {
		return
	}
	m.RowsWithErrors.Set(float64(n))
}
