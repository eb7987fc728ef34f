package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Report pipeline
	ReportComputationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_report_computations_total",
		Help: "Owner report computations by range and outcome",
	}, []string{"range", "outcome"})

	ReportComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sigec_report_compute_duration_seconds",
		Help:    "End-to-end latency of owner report computations",
		Buckets: prometheus.DefBuckets,
	}, []string{"range"})

	ReportPagesFetched = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sigec_report_pages_fetched",
		Help:    "History pages fetched per report computation",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 30},
	})

	ReportSessionsIngested = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sigec_report_sessions_ingested",
		Help:    "Unique sessions ingested per report computation",
		Buckets: prometheus.ExponentialBuckets(10, 2, 10),
	})

	ReportCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_report_cache_lookups_total",
		Help: "Report cache lookups by result",
	}, []string{"result"})

	// Upstream sources
	SourceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_source_requests_total",
		Help: "Requests to session and station sources",
	}, []string{"source", "status"})

	SourceLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sigec_source_latency_seconds",
		Help:    "Latency of session and station source requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
)
