// Package metrics exposes scan and identity-store activity for Prometheus.
//
// A Metrics value owns its own registry so tests and multiple servers in one
// process never collide on the global default registry. All observation
// methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scan outcomes used as the "outcome" label
const (
	OutcomeOK           = "ok"
	OutcomeInvalidRange = "invalid_range"
	OutcomeProbeFailed  = "probe_failed"
	OutcomeProbeTimeout = "probe_timeout"
	OutcomeStoreError   = "store_error"
)

// Metrics holds the collectors registered for one server
type Metrics struct {
	registry *prometheus.Registry

	scansTotal   *prometheus.CounterVec
	scanDuration prometheus.Histogram
	hostsTotal   *prometheus.CounterVec
	aliasWrites  *prometheus.CounterVec
}

// New creates and registers all collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netscan_scans_total",
				Help: "Scans requested, by outcome",
			},
			[]string{"outcome"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "netscan_scan_duration_seconds",
				Help:    "Wall time of completed scans including probe and merge",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		hostsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netscan_hosts_reported_total",
				Help: "Hosts reported by probes, by status",
			},
			[]string{"status"},
		),
		aliasWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netscan_alias_writes_total",
				Help: "Alias set and delete operations",
			},
			[]string{"op"},
		),
	}

	m.registry.MustRegister(
		m.scansTotal,
		m.scanDuration,
		m.hostsTotal,
		m.aliasWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveScan records one scan attempt
func (m *Metrics) ObserveScan(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.scanDuration.Observe(d.Seconds())
	}
}

// ObserveHosts records the up/down split of one scan result
func (m *Metrics) ObserveHosts(up, down int) {
	if m == nil {
		return
	}
	m.hostsTotal.WithLabelValues("up").Add(float64(up))
	m.hostsTotal.WithLabelValues("down").Add(float64(down))
}

// ObserveAliasWrite records an alias set or delete
func (m *Metrics) ObserveAliasWrite(op string) {
	if m == nil {
		return
	}
	m.aliasWrites.WithLabelValues(op).Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
