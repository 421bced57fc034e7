package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatshare_searches_total",
			Help: "Total number of IOC searches by outcome",
		},
		[]string{"outcome"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threatshare_search_duration_seconds",
			Help:    "Time taken to answer IOC searches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatshare_exports_total",
			Help: "Total number of IOC exports by format",
		},
		[]string{"format"},
	)

	IOCsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatshare_iocs_submitted_total",
			Help: "Total number of IOC submissions by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	IOCVerifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threatshare_ioc_verifications_total",
			Help: "Total number of IOC verification events",
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatshare_cache_hits_total",
			Help: "Total number of cache hits by tier",
		},
		[]string{"tier"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatshare_cache_misses_total",
			Help: "Total number of cache misses by tier",
		},
		[]string{"tier"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatshare_cache_errors_total",
			Help: "Total number of cache errors by tier and operation",
		},
		[]string{"tier", "operation"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threatshare_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)
