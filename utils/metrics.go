package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	RecomputeEnqueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_recompute_enqueued_total",
			Help: "Recompute tasks enqueued",
		},
	)

	RecomputeProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_recompute_processed_total",
			Help: "Recompute tasks processed by outcome",
		},
		[]string{"outcome"}, // ok | dropped
	)

	PlanGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrition_plans_generated_total",
			Help: "Nutrition plans generated by source",
		},
		[]string{"source"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(ReqCount, ReqDuration, RecomputeEnqueued, RecomputeProcessed, PlanGenerated)
}
