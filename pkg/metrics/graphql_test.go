package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestGraphQLMetricsLabelsByOperationAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGraphQLMetrics(reg)
	m.Observe("AllOrders", false, 20*time.Millisecond)
	m.Observe("AllOrders", true, 10*time.Millisecond)
	m.Observe("", false, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	requests := findMetricFamily(mfs, "crm_graphql_requests_total")
	if requests == nil {
		t.Fatalf("requests metric not registered")
	}
	counts := map[string]float64{}
	for _, metric := range requests.GetMetric() {
		counts[labelValue(metric, "operation")+"/"+labelValue(metric, "status")] = metric.GetCounter().GetValue()
	}
	for key, want := range map[string]float64{"AllOrders/ok": 1, "AllOrders/error": 1, "unknown/ok": 1} {
		if counts[key] != want {
			t.Fatalf("expected %s=%v, got %v", key, want, counts[key])
		}
	}

	if got, err := fetchHistogramSum(mfs, "crm_graphql_request_duration_seconds", "operation", "AllOrders"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected positive duration sum, got %f", got)
	}
}
