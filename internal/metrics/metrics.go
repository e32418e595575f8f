// Package metrics counts store statements and export progress with Prometheus
// collectors.
//
// The CLI is a short-lived process, so nothing is served over HTTP. Callers
// that want the numbers dump the registry in text exposition format with
// WriteTextfile, for node_exporter's textfile collector to pick up.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config names the metric namespace.
type Config struct {
	// Namespace prefixes every metric name. Default: "mahasiswa".
	Namespace string
}

// Metrics holds the collectors shared by the store and the exporters.
type Metrics struct {
	registry *prometheus.Registry

	statements        *prometheus.CounterVec
	statementDuration *prometheus.HistogramVec
	exportRows        *prometheus.CounterVec
	exportFlushes     *prometheus.CounterVec
	exportBytes       *prometheus.CounterVec
}

// New creates and registers the collectors. If registry is nil a fresh
// registry is used.
func New(cfg Config, registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "mahasiswa"
	}

	m := &Metrics{
		registry: registry,
		statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "store",
			Name:      "statements_total",
			Help:      "Store operations by operation and result.",
		}, []string{"op", "result"}),
		statementDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "store",
			Name:      "statement_duration_seconds",
			Help:      "Store operation latency.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"op"}),
		exportRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "export",
			Name:      "rows_total",
			Help:      "Rows written by exporters.",
		}, []string{"format"}),
		exportFlushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "export",
			Name:      "flushes_total",
			Help:      "Buffer or chunk flushes performed by exporters.",
		}, []string{"format"}),
		exportBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "export",
			Name:      "bytes_total",
			Help:      "Bytes written to export sinks.",
		}, []string{"format"}),
	}

	registry.MustRegister(
		m.statements,
		m.statementDuration,
		m.exportRows,
		m.exportFlushes,
		m.exportBytes,
	)

	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStatement records one store operation. result is "ok" or a failure
// category such as "STATEMENT_FAILED".
func (m *Metrics) ObserveStatement(op, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.statements.WithLabelValues(op, strings.ToLower(result)).Inc()
	m.statementDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// AddExportRows counts rows handed to an exporter.
func (m *Metrics) AddExportRows(format string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.exportRows.WithLabelValues(format).Add(float64(n))
}

// IncExportFlush counts one flush to the sink.
func (m *Metrics) IncExportFlush(format string) {
	if m == nil {
		return
	}
	m.exportFlushes.WithLabelValues(format).Inc()
}

// AddExportBytes counts bytes written to the sink.
func (m *Metrics) AddExportBytes(format string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.exportBytes.WithLabelValues(format).Add(float64(n))
}

// WriteTextfile writes the registry to path in Prometheus text format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
