// Package metrics exposes per-table load counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg          *prometheus.Registry
	RowsRead     *prometheus.CounterVec
	RowsLoaded   *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	LastSuccess  *prometheus.GaugeVec
	RunsInFlight prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	rowsRead := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conform_rows_read_total",
		Help: "Bronze rows read per table.",
	}, []string{"table"})
	rowsLoaded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conform_rows_loaded_total",
		Help: "Rows written per table.",
	}, []string{"table"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conform_table_failures_total",
		Help: "Failed table loads.",
	}, []string{"table"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "conform_table_duration_seconds",
		Help:    "Wall time of one table load.",
		Buckets: prometheus.DefBuckets,
	}, []string{"table"})
	lastSuccess := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "conform_last_success_timestamp_seconds",
		Help: "Unix time of the last successful load per table.",
	}, []string{"table"})
	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "conform_runs_in_flight",
		Help: "Runs currently executing.",
	})

	r.MustRegister(rowsRead, rowsLoaded, failures, duration, lastSuccess, inFlight)
	return &Registry{
		reg:          r,
		RowsRead:     rowsRead,
		RowsLoaded:   rowsLoaded,
		Failures:     failures,
		Duration:     duration,
		LastSuccess:  lastSuccess,
		RunsInFlight: inFlight,
	}
}

// ObserveTable records the outcome of one table load.
func (r *Registry) ObserveTable(table string, read, loaded int64, took time.Duration, err error) {
	r.RowsRead.WithLabelValues(table).Add(float64(read))
	r.Duration.WithLabelValues(table).Observe(took.Seconds())
	if err != nil {
		r.Failures.WithLabelValues(table).Inc()
		return
	}
	r.RowsLoaded.WithLabelValues(table).Add(float64(loaded))
	r.LastSuccess.WithLabelValues(table).SetToCurrentTime()
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
