// Package metrics defines the Prometheus collectors shared by the export pipeline
// and the sanitize service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RowsExported    *prometheus.CounterVec
	FieldsSanitized *prometheus.CounterVec
	RPCRequests     *prometheus.CounterVec
	RPCDuration     *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RowsExported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rhizome",
			Name:      "rows_exported_total",
			Help:      "Rows written to fixture sinks, by table.",
		}, []string{"table"}),
		FieldsSanitized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rhizome",
			Name:      "fields_sanitized_total",
			Help:      "Non-null identifier values replaced by surrogates, by table.",
		}, []string{"table"}),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rhizome",
			Name:      "rpc_requests_total",
			Help:      "Sanitize service calls, by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rhizome",
			Name:      "rpc_duration_seconds",
			Help:      "Sanitize service call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}
	reg.MustRegister(m.RowsExported, m.FieldsSanitized, m.RPCRequests, m.RPCDuration)
	return m
}

// ObserveRows records n exported rows with sanitized identifier values.
func (m *Metrics) ObserveRows(table string, rows, sanitized int) {
	if m == nil {
		return
	}
	m.RowsExported.WithLabelValues(table).Add(float64(rows))
	m.FieldsSanitized.WithLabelValues(table).Add(float64(sanitized))
}

// ObserveRPC records one sanitize service call.
func (m *Metrics) ObserveRPC(procedure, code string, seconds float64) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(procedure, code).Inc()
	m.RPCDuration.WithLabelValues(procedure).Observe(seconds)
}
