package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	authFailures *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskkeeper",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskkeeper",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskkeeper",
			Name:      "auth_failures_total",
			Help:      "Requests rejected by the auth middleware, by reason.",
		}, []string{"reason"}),
	}
}
