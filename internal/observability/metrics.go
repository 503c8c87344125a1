package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "readiness_map"

// Metrics holds the Prometheus collectors for dataset loading, map rendering,
// and report publishing.
type Metrics struct {
	// Dataset metrics.
	DatasetLoads        *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoadDuration prometheus.Histogram
	DatasetRows         prometheus.Gauge
	UnclassifiedRows    prometheus.Gauge

	// Map rendering metrics.
	MapRenders        *prometheus.CounterVec   // labels: renderer={mapbox,plot}, outcome={success,error}
	MapRenderCache    *prometheus.CounterVec   // labels: result={hit,miss}
	MapboxAPIDuration prometheus.Histogram
	MapboxEnabled     prometheus.Gauge

	// Report publishing.
	ReportsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of reading and parsing the dataset source.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Number of bases in the loaded dataset.",
		}),
		UnclassifiedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_unclassified_rows",
			Help:      "Number of bases whose latitude falls outside every region.",
		}),
		MapRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_renders_total",
			Help:      "Map image renders by renderer and outcome.",
		}, []string{"renderer", "outcome"}),
		MapRenderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_render_cache_total",
			Help:      "Rendered map cache lookups by result.",
		}, []string{"result"}),
		MapboxAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mapbox_api_duration_seconds",
			Help:      "Mapbox Static Images API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		MapboxEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mapbox_enabled",
			Help:      "1 when maps are rendered through Mapbox, 0 when rendered locally.",
		}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Insight reports published to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetRows,
		m.UnclassifiedRows,
		m.MapRenders,
		m.MapRenderCache,
		m.MapboxAPIDuration,
		m.MapboxEnabled,
		m.ReportsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
