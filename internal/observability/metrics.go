package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the daily loader.
type Metrics struct {
	LoadRunning prometheus.Gauge
	FilesFolded prometheus.Counter
	RowsLoaded  prometheus.Counter

	// Fetch stage metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchRetries  prometheus.Counter
	FetchDuration prometheus.Histogram

	// Disk cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all loader metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LoadRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_etl",
			Name:      "load_running",
			Help:      "1 while a load run is in progress, 0 otherwise.",
		}),
		FilesFolded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "files_folded_total",
			Help:      "Daily files folded into the accumulated table.",
		}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "rows_loaded_total",
			Help:      "Daily records appended to the accumulated table.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "fetch_requests_total",
			Help:      "Daily file fetch attempts by outcome.",
		}, []string{"outcome"}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "fetch_retries_total",
			Help:      "Fetch attempts that were retried after a transient failure.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single daily file fetch, including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "cache_lookups_total",
			Help:      "Disk cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.LoadRunning,
		m.FilesFolded,
		m.RowsLoaded,
		m.FetchRequests,
		m.FetchRetries,
		m.FetchDuration,
		m.CacheLookups,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LoadRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "covid_etl", Name: "load_running"}),
		FilesFolded:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covid_etl", Name: "files_folded_total"}),
		RowsLoaded:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covid_etl", Name: "rows_loaded_total"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "covid_etl", Name: "fetch_requests_total"}, []string{"outcome"}),
		FetchRetries:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covid_etl", Name: "fetch_retries_total"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "covid_etl", Name: "fetch_duration_seconds"}),
		CacheLookups:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "covid_etl", Name: "cache_lookups_total"}, []string{"result"}),
	}
}
