package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("low-stock", 250*time.Millisecond)
	m.IncSuccess("low-stock")
	m.IncFailure("low-stock")
	m.IncSkipped("low-stock")
	m.IncSkipped("low-stock")

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("low-stock", OutcomeSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("low-stock", OutcomeFailure)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("low-stock", OutcomeSkipped)))
	require.Greater(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("low-stock")), 0.0)

	expected := `
# HELP crm_job_duration_seconds Duration of scheduled job runs.
# TYPE crm_job_duration_seconds histogram
crm_job_duration_seconds_bucket{job="low-stock",le="0.05"} 0
crm_job_duration_seconds_bucket{job="low-stock",le="0.1"} 0
crm_job_duration_seconds_bucket{job="low-stock",le="0.5"} 1
crm_job_duration_seconds_bucket{job="low-stock",le="1"} 1
crm_job_duration_seconds_bucket{job="low-stock",le="5"} 1
crm_job_duration_seconds_bucket{job="low-stock",le="15"} 1
crm_job_duration_seconds_bucket{job="low-stock",le="60"} 1
crm_job_duration_seconds_bucket{job="low-stock",le="300"} 1
crm_job_duration_seconds_bucket{job="low-stock",le="+Inf"} 1
crm_job_duration_seconds_sum{job="low-stock"} 0.25
crm_job_duration_seconds_count{job="low-stock"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "crm_job_duration_seconds"))
}

func TestCronJobMetricsNilIsNoop(t *testing.T) {
	m := NewCronJobMetrics(nil)
	m.ObserveDuration("heartbeat", time.Second)
	m.IncSuccess("heartbeat")
	m.IncFailure("")
	m.IncSkipped("heartbeat")

	var nilMetrics *CronJobMetrics
	nilMetrics.IncSuccess("heartbeat")
	nilMetrics.IncFailure("heartbeat")
}

func TestCronJobMetricsEmptyJobLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	m.IncFailure("")

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("unknown", OutcomeFailure)))
}
