package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GraphQLMetrics counts executed operations and their latency.
type GraphQLMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewGraphQLMetrics(reg prometheus.Registerer) *GraphQLMetrics {
	if reg == nil {
		return &GraphQLMetrics{}
	}
	m := &GraphQLMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_requests_total",
			Help:      "GraphQL operations executed, by operation name and outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graphql_request_duration_seconds",
			Help:      "GraphQL operation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Observe records one operation. An operation whose result carried errors is
// counted with status "error".
func (g *GraphQLMetrics) Observe(operation string, hasErrors bool, duration time.Duration) {
	if g == nil || g.requests == nil {
		return
	}
	status := "ok"
	if hasErrors {
		status = "error"
	}
	op := label(operation)
	g.requests.WithLabelValues(op, status).Inc()
	g.duration.WithLabelValues(op).Observe(duration.Seconds())
}
