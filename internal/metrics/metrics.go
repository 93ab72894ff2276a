package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ClearancesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clearances_created_total",
			Help: "Clearance receipts committed",
		},
	)

	OverClearanceRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clearance_overclearance_rejections_total",
			Help: "Clearance requests rejected for exceeding remaining stock",
		},
	)

	LedgerEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_entries_total",
			Help: "Ledger movements posted by type",
		},
		[]string{"entry_type"},
	)
)
