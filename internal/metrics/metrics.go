package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EstimationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlxd_estimations_total",
			Help: "Total number of estimations by source, project type and outcome",
		},
		[]string{"source", "project_type", "outcome"},
	)

	EstimationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vlxd_estimation_duration_seconds",
			Help:    "End-to-end estimation latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"source"},
	)

	ModelCallAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlxd_model_call_attempts_total",
			Help: "Multimodal model call attempts by result",
		},
		[]string{"result"},
	)

	AnalysisParseStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlxd_analysis_parse_status_total",
			Help: "Model analysis parse outcomes",
		},
		[]string{"status"},
	)

	TriageRoutes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlxd_chat_triage_total",
			Help: "Chat triage results by route and rule",
		},
		[]string{"route", "rule"},
	)

	CatalogCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlxd_catalog_cache_lookups_total",
			Help: "Catalog cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "vlxd_http_request_duration_seconds",
			Help: "HTTP request latency in seconds",
		},
		[]string{"method", "route", "status"},
	)
)
