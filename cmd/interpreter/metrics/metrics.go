// Package metrics provides Prometheus metrics for the interpreter.
//
// Metrics exposed:
//   - fdynamics_interpreter_grpc_requests_total: Counter of gRPC requests by method and status
//   - fdynamics_interpreter_grpc_request_duration_seconds: Histogram of gRPC request durations
//   - fdynamics_interpreter_result_fetch_duration_seconds: Histogram of result fetch latency
//   - fdynamics_interpreter_result_fetch_errors_total: Counter of result fetch errors
//   - fdynamics_interpreter_names_interpreted_total: Counter of feature names decoded
//   - fdynamics_interpreter_result_age_seen_seconds: Gauge of the age of the last fetched result
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	GRPCRequestsTotal   *prometheus.CounterVec
	GRPCRequestDuration *prometheus.HistogramVec
	ResultFetchDuration prometheus.Histogram
	ResultFetchErrors   prometheus.Counter
	NamesInterpreted    prometheus.Counter
	ResultAgeSeen       prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		GRPCRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fdynamics_interpreter_grpc_requests_total",
			Help: "Total number of gRPC requests by method and status",
		}, []string{"method", "status"}),

		GRPCRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fdynamics_interpreter_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),

		ResultFetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fdynamics_interpreter_result_fetch_duration_seconds",
			Help:    "Duration of result fetch from the extractor",
			Buckets: prometheus.DefBuckets,
		}),

		ResultFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fdynamics_interpreter_result_fetch_errors_total",
			Help: "Total number of errors fetching results",
		}),

		NamesInterpreted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fdynamics_interpreter_names_interpreted_total",
			Help: "Total number of feature names interpreted",
		}),

		ResultAgeSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fdynamics_interpreter_result_age_seen_seconds",
			Help: "Age of the last result fetched from the extractor",
		}),
	}
}

func (m *Metrics) RecordGRPCRequest(method, status string) {
	m.GRPCRequestsTotal.WithLabelValues(method, status).Inc()
}

func (m *Metrics) ObserveGRPCDuration(method string, seconds float64) {
	m.GRPCRequestDuration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) ObserveResultFetch(seconds float64) {
	m.ResultFetchDuration.Observe(seconds)
}

func (m *Metrics) RecordResultFetchError() {
	m.ResultFetchErrors.Inc()
}

func (m *Metrics) AddNamesInterpreted(n int) {
	m.NamesInterpreted.Add(float64(n))
}

func (m *Metrics) SetResultAge(seconds float64) {
	m.ResultAgeSeen.Set(seconds)
}
