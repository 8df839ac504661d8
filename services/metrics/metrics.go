package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/masomo/planner/core"
)

// outcomes
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeRejected = "rejected" // envelope reported success=false
)

type Registry struct {
	reg           *prometheus.Registry
	StoreCalls    *prometheus.CounterVec
	StoreLatency  *prometheus.HistogramVec
	FailedRecords *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_record_store_calls_total",
		Help: "Record store calls by table, operation and outcome.",
	}, []string{"table", "op", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_record_store_latency_seconds",
		Help:    "Record store call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"table", "op"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_record_store_failed_records_total",
		Help: "Failed entries of mutation result lists.",
	}, []string{"table", "op"})

	r.MustRegister(calls, latency, failed)
	return &Registry{
		reg:           r,
		StoreCalls:    calls,
		StoreLatency:  latency,
		FailedRecords: failed,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// Gatherer exposes the underlying registry (tests).
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) observe(table, op string, start time.Time, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
		if _, ok := err.(*core.RemoteError); ok {
			outcome = outcomeRejected
		}
	}
	r.StoreCalls.WithLabelValues(table, op, outcome).Inc()
	r.StoreLatency.WithLabelValues(table, op).Observe(time.Since(start).Seconds())
}

func (r *Registry) observeResults(table, op string, results []core.RecordResult) {
	_, failed := core.PartitionResults(results)
	if len(failed) > 0 {
		r.FailedRecords.WithLabelValues(table, op).Add(float64(len(failed)))
	}
}
