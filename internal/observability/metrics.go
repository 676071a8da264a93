package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "anomaly_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// pipeline and the dashboard read model.
type Metrics struct {
	RecordsConsumed   prometheus.Counter
	MarkersProduced   prometheus.Counter
	TransformErrors   prometheus.Counter
	PipelineRunning   prometheus.Gauge
	AnomalousMarkers  prometheus.Counter
	RecordDiagnostics *prometheus.CounterVec // labels: field

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Read model metrics.
	StoreRecords prometheus.Gauge
	SeriesCache  *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.RecordsConsumed,
		m.MarkersProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.AnomalousMarkers,
		m.RecordDiagnostics,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.StoreRecords,
		m.SeriesCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		RecordsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_consumed_total",
			Help:      help("Total records read from the source topic."),
		}),
		MarkersProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "markers_produced_total",
			Help:      help("Total marker events written to the sink topic."),
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      help("Total messages that could not be parsed into a record."),
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 when the pipeline is active, 0 when shut down."),
		}),
		AnomalousMarkers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalous_markers_total",
			Help:      help("Total markers published with the anomalous icon."),
		}),
		RecordDiagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_diagnostics_total",
			Help:      help("Per-record problems found while shaping, by field."),
		}, []string{"field"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      help("Number of messages per batch extracted from Kafka."),
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      help("Duration of a complete batch extract-transform-load cycle."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		StoreRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_records",
			Help:      help("Records currently held in the in-memory window."),
		}),
		SeriesCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_cache_total",
			Help:      help("Series view cache lookups by result."),
		}, []string{"result"}),
	}
}

// RecordDiagnostic counts a per-record problem under its field label.
func (m *Metrics) RecordDiagnostic(field string) {
	m.RecordDiagnostics.WithLabelValues(field).Inc()
}
