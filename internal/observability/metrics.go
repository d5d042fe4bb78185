// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	DegradedSignals  *prometheus.CounterVec
	RisksFound       *prometheus.CounterVec

	// Upstream fetch metrics
	FetchLatency *prometheus.HistogramVec
	FetchErrors  *prometheus.CounterVec

	// Watch loop metrics
	WatchedMints       prometheus.Gauge
	WatchReconnects    prometheus.Counter
	WatchEventsHandled prometheus.Counter

	// Corpus metrics
	SamplesGenerated *prometheus.CounterVec
	DetectorRuns     *prometheus.CounterVec
	CalibrationRuns  prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rugradar"
	}

	return &Metrics{
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "analyses_total",
			Help:      "Total number of token analyses by verdict",
		}, []string{"verdict"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "End-to-end token analysis duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		DegradedSignals: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "degraded_signals_total",
			Help:      "Total number of degraded upstream signals by source",
		}, []string{"source"}),
		RisksFound: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "risks_found_total",
			Help:      "Total number of risk findings by type and severity",
		}, []string{"type", "severity"}),

		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "latency_seconds",
			Help:      "Upstream fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "errors_total",
			Help:      "Total number of upstream fetch errors by source",
		}, []string{"source"}),

		WatchedMints: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "mints",
			Help:      "Current number of mints under watch",
		}),
		WatchReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "reconnects_total",
			Help:      "Total number of WebSocket reconnects",
		}),
		WatchEventsHandled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "events_handled_total",
			Help:      "Total number of log notifications handled",
		}),

		SamplesGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "corpus",
			Name:      "samples_generated_total",
			Help:      "Total number of synthetic samples generated by pattern",
		}, []string{"pattern"}),
		DetectorRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "corpus",
			Name:      "detector_runs_total",
			Help:      "Total number of detector runs over synthetic samples",
		}, []string{"detector", "detected"}),
		CalibrationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "corpus",
			Name:      "calibration_runs_total",
			Help:      "Total number of calibration sweeps completed",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAnalysis records one finished analysis.
func (m *Metrics) RecordAnalysis(verdict string, seconds float64) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(verdict).Inc()
	m.AnalysisDuration.Observe(seconds)
}

// RecordDegradedSignal records one upstream source falling back to its
// neutral default.
func (m *Metrics) RecordDegradedSignal(source string) {
	if m == nil {
		return
	}
	m.DegradedSignals.WithLabelValues(source).Inc()
}

// RecordRisk records one emitted risk finding.
func (m *Metrics) RecordRisk(riskType, severity string) {
	if m == nil {
		return
	}
	m.RisksFound.WithLabelValues(riskType, severity).Inc()
}

// RecordFetch records one upstream fetch attempt.
func (m *Metrics) RecordFetch(source string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.FetchLatency.WithLabelValues(source).Observe(seconds)
	if err != nil {
		m.FetchErrors.WithLabelValues(source).Inc()
	}
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordSampleGenerated records one generated synthetic sample.
func (m *Metrics) RecordSampleGenerated(pattern string) {
	if m == nil {
		return
	}
	m.SamplesGenerated.WithLabelValues(pattern).Inc()
}

// RecordCalibrationRun records one completed calibration sweep.
func (m *Metrics) RecordCalibrationRun() {
	if m == nil {
		return
	}
	m.CalibrationRuns.Inc()
}

// RecordDetectorRun records one detector outcome over a sample.
func (m *Metrics) RecordDetectorRun(detector string, detected bool) {
	if m == nil {
		return
	}
	label := "false"
	if detected {
		label = "true"
	}
	m.DetectorRuns.WithLabelValues(detector, label).Inc()
}
