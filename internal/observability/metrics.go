package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// dataset pipeline and the aggregation API.
type Metrics struct {
	// Dataset loading metrics.
	DatasetLoads        prometheus.Counter
	DatasetCache        *prometheus.CounterVec // labels: result={hit,miss}
	DatasetLoadDuration prometheus.Histogram

	// Last-load cleaning diagnostics.
	RowsRaw           prometheus.Gauge
	RowsClean         prometheus.Gauge
	DuplicatesDropped prometheus.Gauge
	DateParseFailures prometheus.Gauge

	// Query path metrics.
	FilterDuration      prometheus.Histogram
	AggregationRequests *prometheus.CounterVec   // labels: case, outcome={ok,error}
	AggregationDuration *prometheus.HistogramVec // labels: case
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetCache,
		m.DatasetLoadDuration,
		m.RowsRaw,
		m.RowsClean,
		m.DuplicatesDropped,
		m.DateParseFailures,
		m.FilterDuration,
		m.AggregationRequests,
		m.AggregationDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can construct components repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "accident_insight",
			Name:      "dataset_loads_total",
			Help:      "Total full pipeline runs over the source dataset.",
		}),
		DatasetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accident_insight",
			Name:      "dataset_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "accident_insight",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a complete read-clean-derive pipeline run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RowsRaw: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "accident_insight",
			Name:      "dataset_rows_raw",
			Help:      "Raw row count of the most recently loaded dataset.",
		}),
		RowsClean: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "accident_insight",
			Name:      "dataset_rows_clean",
			Help:      "Cleaned row count of the most recently loaded dataset.",
		}),
		DuplicatesDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "accident_insight",
			Name:      "dataset_duplicates_dropped",
			Help:      "Duplicate accident_index rows dropped in the last load.",
		}),
		DateParseFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "accident_insight",
			Name:      "dataset_date_parse_failures",
			Help:      "Rows whose accident date failed to parse in the last load.",
		}),
		FilterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "accident_insight",
			Name:      "filter_duration_seconds",
			Help:      "Duration of one filter pass over the cleaned table.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		AggregationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accident_insight",
			Name:      "aggregation_requests_total",
			Help:      "Case aggregation requests by case and outcome.",
		}, []string{"case", "outcome"}),
		AggregationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "accident_insight",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of one case aggregation over the filtered table.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"case"}),
	}
}
