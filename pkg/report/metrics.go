package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsPluginName is the registry name of the metrics report.
const MetricsPluginName = "metrics"

// MetricsReport counts outcomes and captured evidence in a private
// Prometheus registry and writes them as a textfile-collector file on Close.
type MetricsReport struct {
	path     string
	registry *prometheus.Registry
	started  time.Time

	phases   *prometheus.CounterVec
	captures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	runTime  prometheus.Gauge
}

// NewMetricsReport creates a report written to path on Close.
func NewMetricsReport(path string) *MetricsReport {
	m := &MetricsReport{
		path:     path,
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
		phases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "browsertest",
			Name:      "phase_outcomes_total",
			Help:      "Test phase outcomes by phase and status.",
		}, []string{"phase", "status"}),
		captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "browsertest",
			Name:      "evidence_captured_total",
			Help:      "Failure evidence saved, by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "browsertest",
			Name:      "phase_duration_seconds",
			Help:      "Duration of test phases.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"phase"}),
		runTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "browsertest",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the test run.",
		}),
	}
	m.registry.MustRegister(m.phases, m.captures, m.duration, m.runTime)
	return m
}

// Name implements Plugin.
func (m *MetricsReport) Name() string {
	return MetricsPluginName
}

// Registry exposes the underlying registry, for serving or testing.
func (m *MetricsReport) Registry() *prometheus.Registry {
	return m.registry
}

// OnOutcome implements Listener.
func (m *MetricsReport) OnOutcome(_ *TestContext, o *Outcome) {
	m.phases.WithLabelValues(string(o.Phase), string(o.Status)).Inc()
	m.duration.WithLabelValues(string(o.Phase)).Observe(o.Duration.Seconds())
}

// RecordCapture counts a saved artifact. It matches CaptureFunc.
func (m *MetricsReport) RecordCapture(kind EvidenceKind, _ string) {
	m.captures.WithLabelValues(string(kind)).Inc()
}

// Close writes the metrics file.
func (m *MetricsReport) Close() error {
	m.runTime.Set(time.Since(m.started).Seconds())

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(m.path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
