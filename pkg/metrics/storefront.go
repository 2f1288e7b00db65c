package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics records CMS fetch latency and outcomes.
type CatalogMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
	stale    prometheus.Counter
}

// NewCatalogMetrics registers catalog metrics on the provided registerer.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_catalog_fetch_duration_seconds",
		Help:    "Duration of catalog fetches against the CMS in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_catalog_fetch_failure_total",
		Help: "Catalog fetches that returned an error.",
	}, []string{"operation"})
	stale := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_catalog_stale_results_total",
		Help: "Catalog results discarded because a newer request superseded them or the session closed.",
	})
	reg.MustRegister(duration, failure, stale)
	return &CatalogMetrics{duration: duration, failure: failure, stale: stale}
}

// ObserveFetch records one fetch for operation and counts it as failed when err is non-nil.
func (c *CatalogMetrics) ObserveFetch(operation string, duration time.Duration, err error) {
	if c == nil || c.duration == nil {
		return
	}
	label := normalizeLabel(operation)
	c.duration.WithLabelValues(label).Observe(duration.Seconds())
	if err != nil {
		c.failure.WithLabelValues(label).Inc()
	}
}

// IncStale counts a discarded out-of-order result.
func (c *CatalogMetrics) IncStale() {
	if c == nil || c.stale == nil {
		return
	}
	c.stale.Inc()
}

// CheckoutMetrics counts checkout submissions by outcome (placed, invalid, empty_cart).
type CheckoutMetrics struct {
	outcomes *prometheus.CounterVec
}

// NewCheckoutMetrics registers checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_submissions_total",
		Help: "Checkout submissions grouped by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(outcomes)
	return &CheckoutMetrics{outcomes: outcomes}
}

// IncOutcome increments the counter for the named outcome.
func (c *CheckoutMetrics) IncOutcome(outcome string) {
	if c == nil || c.outcomes == nil {
		return
	}
	c.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}
