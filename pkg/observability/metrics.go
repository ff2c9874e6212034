package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "meteomap"

// Metrics holds the Prometheus collectors for the editor. It implements
// EditorHooks, StorageHooks and ExportHooks.
type Metrics struct {
	Commits       *prometheus.CounterVec // labels: op
	Undos         *prometheus.CounterVec // labels: applied={true,false}
	Imports       *prometheus.CounterVec // labels: outcome={success,error}
	Elements      prometheus.Gauge
	Saves         *prometheus.CounterVec // labels: backend, outcome
	SaveDuration  *prometheus.HistogramVec
	SaveBytes     prometheus.Gauge
	Loads         *prometheus.CounterVec // labels: backend, result={hit,miss,error}
	Exports       *prometheus.CounterVec // labels: outcome
	ExportSeconds prometheus.Histogram
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		Commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_commits_total",
			Help:      help("History commits by mutation."),
		}, []string{"op"}),
		Undos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_undos_total",
			Help:      help("Undo requests, split by whether anything was undone."),
		}, []string{"applied"}),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "project_imports_total",
			Help:      help("Project imports by outcome."),
		}, []string{"outcome"}),
		Elements: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_elements",
			Help:      help("Number of elements after the last commit."),
		}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autosave_writes_total",
			Help:      help("Autosave writes by backend and outcome."),
		}, []string{"backend", "outcome"}),
		SaveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "autosave_duration_seconds",
			Help:      help("Autosave write duration in seconds."),
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"backend"}),
		SaveBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "autosave_bytes",
			Help:      help("Size of the last autosaved project record."),
		}),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autosave_loads_total",
			Help:      help("Reads of the autosave key by backend and result."),
		}, []string{"backend", "result"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      help("Raster exports by outcome."),
		}, []string{"outcome"}),
		ExportSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      help("Raster export duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// NewMetrics creates the editor metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics(true)
	reg.MustRegister(
		m.Commits,
		m.Undos,
		m.Imports,
		m.Elements,
		m.Saves,
		m.SaveDuration,
		m.SaveBytes,
		m.Loads,
		m.Exports,
		m.ExportSeconds,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics, avoiding "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) OnCommit(op string, elements int) {
	m.Commits.WithLabelValues(op).Inc()
	m.Elements.Set(float64(elements))
}

func (m *Metrics) OnUndo(applied bool) {
	if applied {
		m.Undos.WithLabelValues("true").Inc()
	} else {
		m.Undos.WithLabelValues("false").Inc()
	}
}

func (m *Metrics) OnImport(err error) {
	m.Imports.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) OnSave(_ context.Context, backend string, size int, d time.Duration, err error) {
	m.Saves.WithLabelValues(backend, outcome(err)).Inc()
	m.SaveDuration.WithLabelValues(backend).Observe(d.Seconds())
	if err == nil {
		m.SaveBytes.Set(float64(size))
	}
}

func (m *Metrics) OnLoad(_ context.Context, backend string, found bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case found:
		result = "hit"
	}
	m.Loads.WithLabelValues(backend, result).Inc()
}

func (m *Metrics) OnExportStart(context.Context, float64) {}

func (m *Metrics) OnExportComplete(_ context.Context, _ int, d time.Duration, err error) {
	m.Exports.WithLabelValues(outcome(err)).Inc()
	m.ExportSeconds.Observe(d.Seconds())
}

// Install registers m as the editor, storage and export hooks.
func Install(m *Metrics) {
	SetEditorHooks(m)
	SetStorageHooks(m)
	SetExportHooks(m)
}
