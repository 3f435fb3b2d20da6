// Package metrics holds Prometheus instruments that are used across the
// framework.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Cumulative number of requests dispatched.",
		})

	RequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_request_duration_seconds",
			Help:    "Wall-clock time from context creation to finalize.",
			Buckets: prometheus.DefBuckets,
		})

	DeepRecursionTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_deep_recursion_total",
			Help: "Cumulative number of executes refused by the recursion guard.",
		})

	AsyncDetachTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_async_detach_total",
			Help: "Cumulative number of asynchronous suspensions.",
		})

	AsyncUnderflowTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_async_underflow_total",
			Help: "Cumulative number of attach calls without a matching detach.",
		})

	DoubleFinalizeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_double_finalize_total",
			Help: "Cumulative number of finalize attempts on finalized requests.",
		})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		DeepRecursionTotal,
		AsyncDetachTotal,
		AsyncUnderflowTotal,
		DoubleFinalizeTotal,
	)
}
