// file: internal/metrics/metrics.go
// version: 1.1.0
// guid: d4e5f6a7-b8c9-0d1e-2f3a-4b5c6d7e8f9a

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	matcherInvocations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fund_discovery",
		Name:      "matcher_invocations_total",
		Help:      "Total number of multi-layer matcher executions",
	})
	layerMatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fund_discovery",
		Name:      "layer_matches_total",
		Help:      "Total match candidates produced by layer",
	}, []string{"layer"})
	searchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fund_discovery",
		Name:      "search_duration_seconds",
		Help:      "Histogram of search/suggest/comparison durations by operation",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms up to ~4s
	}, []string{"operation"})

	cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fund_discovery",
		Name:      "cache_hits_total",
		Help:      "Cache hits by service",
	}, []string{"service"})
	cacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fund_discovery",
		Name:      "cache_misses_total",
		Help:      "Cache misses by service",
	}, []string{"service"})
	cacheErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fund_discovery",
		Name:      "cache_errors_total",
		Help:      "Cache backend failures by service (absorbed, non-fatal)",
	}, []string{"service"})

	debounceCoalesced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fund_discovery",
		Name:      "debounce_coalesced_total",
		Help:      "Suggestion requests superseded by a newer keystroke for the same key",
	})

	fundsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fund_discovery",
		Name:      "catalog_funds_total",
		Help:      "Current total number of funds in the catalog",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(matcherInvocations, layerMatches, searchDuration,
			cacheHits, cacheMisses, cacheErrors, debounceCoalesced, fundsGauge)
	})
}

// Matcher lifecycle helpers
func IncMatcherInvocation() { matcherInvocations.Inc() }
func IncLayerMatch(layer string) { layerMatches.WithLabelValues(layer).Inc() }
func IncDebounceCoalesced() { debounceCoalesced.Inc() }

func ObserveSearchDuration(operation string, d time.Duration) {
	searchDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Cache counters
func IncCacheHit(service string) { cacheHits.WithLabelValues(service).Inc() }
func IncCacheMiss(service string) { cacheMisses.WithLabelValues(service).Inc() }
func IncCacheError(service string) { cacheErrors.WithLabelValues(service).Inc() }

// Gauges
func SetFunds(n int) { fundsGauge.Set(float64(n)) }
