// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodies_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// LedgerOperations counts relationship mutations by operation and outcome
	// (ok, noop, already_related, not_related, not_found, partial, error).
	LedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodies_ledger_operations_total",
			Help: "Relationship ledger operations by outcome",
		},
		[]string{"op", "outcome"},
	)

	LedgerPartialWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodies_ledger_partial_writes_total",
			Help: "Paired writes where only the first side was persisted",
		},
		[]string{"op"},
	)

	ReconcilerRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodies_reconciler_repairs_total",
			Help: "Rows repaired by the relationship reconciler",
		},
		[]string{"kind"},
	)

	ReconcilerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodies_reconciler_runs_total",
			Help: "Reconciler runs by result",
		},
		[]string{"result"},
	)

	IdentityResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodies_identity_resolutions_total",
			Help: "Bearer credential resolutions by status",
		},
		[]string{"status"},
	)
)
