// Package metrics exposes Prometheus observability primitives for the
// scoring pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	rowsScored    prometheus.Counter
	rowsPersisted prometheus.Counter
	stepErrors    *prometheus.CounterVec
	riskBandRows  *prometheus.GaugeVec
}

// New registers and returns pipeline metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "churnscope_pipeline_runs_total",
		Help: "Pipeline runs by terminal status.",
	}, []string{"status"})

	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "churnscope_pipeline_run_duration_seconds",
		Help:    "End to end pipeline run latency.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"status"})

	rowsScored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "churnscope_rows_scored_total",
		Help: "Customer rows scored by the model.",
	})

	rowsPersisted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "churnscope_rows_persisted_total",
		Help: "Scored rows merged into the scores table.",
	})

	stepErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "churnscope_step_errors_total",
		Help: "Pipeline failures by step for incident triage.",
	}, []string{"step"})

	riskBandRows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "churnscope_risk_band_rows",
		Help: "Row counts per risk band from the latest run.",
	}, []string{"band"})

	registerer.MustRegister(
		runs,
		runDuration,
		rowsScored,
		rowsPersisted,
		stepErrors,
		riskBandRows,
	)

	return &Metrics{
		runs:          runs,
		runDuration:   runDuration,
		rowsScored:    rowsScored,
		rowsPersisted: rowsPersisted,
		stepErrors:    stepErrors,
		riskBandRows:  riskBandRows,
	}
}

// ObserveRun records a terminal pipeline run with its latency.
func (m *Metrics) ObserveRun(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// AddRowsScored increments the scored rows counter by count.
func (m *Metrics) AddRowsScored(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.rowsScored.Add(float64(count))
}

// AddRowsPersisted increments the persisted rows counter by count.
func (m *Metrics) AddRowsPersisted(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.rowsPersisted.Add(float64(count))
}

// IncStepError increments the failure counter for a pipeline step.
func (m *Metrics) IncStepError(step string) {
	if m == nil {
		return
	}
	m.stepErrors.WithLabelValues(step).Inc()
}

// SetRiskBandRows publishes the band distribution of the latest run.
func (m *Metrics) SetRiskBandRows(distribution map[string]int) {
	if m == nil {
		return
	}
	for band, count := range distribution {
		m.riskBandRows.WithLabelValues(band).Set(float64(count))
	}
}
