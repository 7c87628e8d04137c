// Package metrics provides Prometheus metrics for the extractor.
//
// Every metric carries a constant "source" label, so one process can run an
// extractor per source against the default registry.
//
// Metrics exposed:
//   - fdynamics_adapter_collect_seconds: Histogram of adapter collection time
//   - fdynamics_extract_seconds: Histogram of full feature dynamics runs
//   - fdynamics_stage_seconds: Histogram of pipeline stage durations by stage
//   - fdynamics_features_dropped_total: Counter of features dropped as incomplete or non-finite, by stage
//   - fdynamics_features: Gauge of columns in the latest result
//   - fdynamics_result_age_seconds: Gauge of the age of the latest result
//   - fdynamics_errors_total: Counter of errors by component and reason
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AdapterCollectSeconds prometheus.Histogram
	ExtractSeconds        prometheus.Histogram
	StageSeconds          *prometheus.HistogramVec
	FeaturesDropped       *prometheus.CounterVec
	Features              prometheus.Gauge
	ResultAgeSeconds      prometheus.Gauge
	ErrorsTotal           *prometheus.CounterVec
}

// New registers the extractor metrics for source on the default registry.
func New(source string) *Metrics {
	return NewWith(prometheus.DefaultRegisterer, source)
}

// NewWith registers the extractor metrics for source on reg.
func NewWith(reg prometheus.Registerer, source string) *Metrics {
	labels := prometheus.Labels{"source": source}
	factory := promauto.With(reg)

	return &Metrics{
		AdapterCollectSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "fdynamics_adapter_collect_seconds",
			Help:        "Time spent collecting observations from the adapter",
			ConstLabels: labels,
		}),
		ExtractSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "fdynamics_extract_seconds",
			Help:        "Time spent extracting feature dynamics",
			ConstLabels: labels,
		}),
		StageSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "fdynamics_stage_seconds",
			Help:        "Time spent per feature dynamics pipeline stage",
			ConstLabels: labels,
		}, []string{"stage"}),
		FeaturesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "fdynamics_features_dropped_total",
			Help:        "Features dropped because they were missing for some window or id, or not finite",
			ConstLabels: labels,
		}, []string{"stage"}),
		Features: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "fdynamics_features",
			Help:        "Number of feature dynamics columns in the latest result",
			ConstLabels: labels,
		}),
		ResultAgeSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "fdynamics_result_age_seconds",
			Help:        "Age of the latest stored result in seconds",
			ConstLabels: labels,
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "fdynamics_errors_total",
			Help:        "Total number of errors by component and reason",
			ConstLabels: labels,
		}, []string{"component", "reason"}),
	}
}

func (m *Metrics) RecordCollect(seconds float64) {
	m.AdapterCollectSeconds.Observe(seconds)
}

func (m *Metrics) RecordExtract(seconds float64) {
	m.ExtractSeconds.Observe(seconds)
}

// ObserveStage records one pipeline stage run.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// AddDropped counts features a stage dropped as incomplete.
func (m *Metrics) AddDropped(stage string, n int) {
	m.FeaturesDropped.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) SetFeatures(n int) {
	m.Features.Set(float64(n))
}

func (m *Metrics) SetResultAge(seconds float64) {
	m.ResultAgeSeconds.Set(seconds)
}

func (m *Metrics) RecordError(component, reason string) {
	m.ErrorsTotal.WithLabelValues(component, reason).Inc()
}
