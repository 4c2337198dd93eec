package monitoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_decisions_total",
		Help: "Total number of loan decisions by outcome.",
	}, []string{"outcome"})

	turnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "conversation_turn_duration_seconds",
		Help:    "Duration of one conversation turn, labeled by the stage it started in.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessions_started_total",
		Help: "Total number of conversation sessions started.",
	})

	sessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessions_expired_total",
		Help: "Total number of sessions expired by the cleanup job.",
	})
)

// ObserveHTTPRequest records one served request. The duration histogram
// is not labeled by status to keep the series count down.
func ObserveHTTPRequest(method, route string, status int, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func ObserveDecision(outcome string) {
	decisionsTotal.WithLabelValues(outcome).Inc()
}

func ObserveTurn(stage string, seconds float64) {
	turnDuration.WithLabelValues(stage).Observe(seconds)
}

func SessionStarted() {
	sessionsStarted.Inc()
}

func SessionsExpired(n int) {
	sessionsExpired.Add(float64(n))
}
