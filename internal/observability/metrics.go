package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Telemetry acquisition.
	ProviderRequests *prometheus.CounterVec   // labels: provider={ioc,ndbc,fallback}, outcome={ok,insufficient,unavailable}
	ProviderDuration *prometheus.HistogramVec // labels: provider
	Fallbacks        *prometheus.CounterVec   // labels: region

	// Earthquake catalog.
	CatalogRequests *prometheus.CounterVec // labels: outcome={success,error}
	CatalogCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Classification.
	ClassifierLoaded prometheus.Gauge
	Predictions      *prometheus.CounterVec // labels: tier={LOW,MODERATE,HIGH}
	Alerts           prometheus.Counter
	AlertsPublished  *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderDuration,
		m.Fallbacks,
		m.CatalogRequests,
		m.CatalogCache,
		m.ClassifierLoaded,
		m.Predictions,
		m.Alerts,
		m.AlertsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tsunami",
			Name:      "provider_requests_total",
			Help:      "Telemetry provider attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tsunami",
			Name:      "provider_duration_seconds",
			Help:      "Duration of a single telemetry provider attempt.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tsunami",
			Name:      "fallback_results_total",
			Help:      "Stations served with synthetic readings, by region.",
		}, []string{"region"}),
		CatalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tsunami",
			Name:      "catalog_requests_total",
			Help:      "Earthquake catalog API requests by outcome.",
		}, []string{"outcome"}),
		CatalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tsunami",
			Name:      "catalog_cache_total",
			Help:      "Earthquake catalog cache lookups by result.",
		}, []string{"result"}),
		ClassifierLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tsunami",
			Name:      "classifier_loaded",
			Help:      "1 when the classifier is loaded, 0 when predictions are unavailable.",
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tsunami",
			Name:      "predictions_total",
			Help:      "Scored samples by risk tier.",
		}, []string{"tier"}),
		Alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tsunami",
			Name:      "alerts_total",
			Help:      "Scored samples whose probability exceeded the alert threshold.",
		}),
		AlertsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tsunami",
			Name:      "alerts_published_total",
			Help:      "Alert events written to the alert sink by outcome.",
		}, []string{"outcome"}),
	}
}
