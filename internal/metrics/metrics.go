package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventstock_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventstock_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "path"},
	)

	StoreLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventstock_store_load_failures_total",
			Help: "Collections that failed to load and were served empty",
		},
		[]string{"collection"},
	)

	StoreSaveFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventstock_store_save_failures_total",
			Help: "Collection saves that failed after the in-memory change was kept",
		},
		[]string{"collection"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventstock_cache_lookups_total",
			Help: "Collection cache lookups",
		},
		[]string{"result"}, // hit, miss, error
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventstock_order_exports_total",
			Help: "Rendered order documents",
		},
		[]string{"format"},
	)
)
