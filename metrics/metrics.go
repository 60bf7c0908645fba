// metrics/metrics.go
// Package metrics exposes Prometheus instrumentation for the sync pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "visa_bulletin"

// SyncMetrics holds the sync pipeline collectors.
type SyncMetrics struct {
	Runs          *prometheus.CounterVec
	Duration      prometheus.Histogram
	RowsWritten   *prometheus.GaugeVec
	TablesSkipped *prometheus.CounterVec
	LastSuccess   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewSyncMetrics registers the collectors on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewSyncMetrics(reg *prometheus.Registry) *SyncMetrics {
	f := promauto.With(reg)
	return &SyncMetrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync invocations by outcome.",
		}, []string{"status"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Wall time of one sync invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		RowsWritten: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_written",
			Help:      "Rows written to each table by the last sync that replaced it.",
		}, []string{"table"}),
		TablesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_skipped_total",
			Help:      "Tables left untouched because extraction produced no rows.",
		}, []string{"table"}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful sync.",
		}),
		gatherer: reg,
	}
}

func (m *SyncMetrics) ObserveSuccess(started time.Time, action, filing int, skipped []string) {
	m.Runs.WithLabelValues("success").Inc()
	m.Duration.Observe(time.Since(started).Seconds())
	if action > 0 {
		m.RowsWritten.WithLabelValues("action").Set(float64(action))
	}
	if filing > 0 {
		m.RowsWritten.WithLabelValues("filing").Set(float64(filing))
	}
	for _, t := range skipped {
		m.TablesSkipped.WithLabelValues(t).Inc()
	}
	m.LastSuccess.SetToCurrentTime()
}

func (m *SyncMetrics) ObserveFailure(started time.Time) {
	m.Runs.WithLabelValues("error").Inc()
	m.Duration.Observe(time.Since(started).Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *SyncMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
