package cron

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/crm-backend/pkg/logger"
	"github.com/angelmondragon/crm-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

// heldLock refuses every acquisition, as if another replica owned the lock.
type heldLock struct{}

func (heldLock) Acquire(context.Context, string) (bool, error) { return false, nil }
func (heldLock) Release(context.Context, string) error         { return nil }

func newTestService(t *testing.T, registry *Registry, lock Lock, reg prometheus.Registerer, now time.Time) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestRunDueRunsOnlyDueJobs(t *testing.T) {
	start := time.Date(2026, 3, 4, 7, 58, 0, 0, time.UTC)
	every := &testJob{name: "every-5m"}
	daily := &testJob{name: "daily-8"}
	registry := NewRegistry()
	registry.Register(every, Every(5*time.Minute))
	registry.Register(daily, Daily(8, 0))

	service := newTestService(t, registry, NewLocalLock(), nil, start)
	service.plan(start)

	if err := service.runDue(context.Background(), start.Add(time.Minute)); err != nil {
		t.Fatalf("runDue: %v", err)
	}
	if every.runs != 0 || daily.runs != 0 {
		t.Fatalf("nothing should be due yet, got %d/%d", every.runs, daily.runs)
	}

	if err := service.runDue(context.Background(), start.Add(2*time.Minute)); err != nil {
		t.Fatalf("runDue: %v", err)
	}
	if every.runs != 1 || daily.runs != 1 {
		t.Fatalf("both jobs due at 08:00, got %d/%d", every.runs, daily.runs)
	}

	// A late tick runs a job once, not once per missed activation.
	if err := service.runDue(context.Background(), start.Add(30*time.Minute)); err != nil {
		t.Fatalf("runDue: %v", err)
	}
	if every.runs != 2 || daily.runs != 1 {
		t.Fatalf("unexpected runs after late tick %d/%d", every.runs, daily.runs)
	}
}

func TestRunDueKeepsGoingAfterFailure(t *testing.T) {
	start := time.Date(2026, 3, 4, 7, 59, 0, 0, time.UTC)
	failing := &testJob{name: "fail", err: errors.New("boom")}
	ok := &testJob{name: "success"}
	registry := NewRegistry()
	registry.Register(failing, Every(time.Minute))
	registry.Register(ok, Every(time.Minute))

	reg := prometheus.NewRegistry()
	service := newTestService(t, registry, NewLocalLock(), reg, start)
	service.plan(start)

	err := service.runDue(context.Background(), start.Add(time.Minute))
	if err == nil || !strings.Contains(err.Error(), "fail: boom") {
		t.Fatalf("expected aggregated failure, got %v", err)
	}
	if failing.runs != 1 || ok.runs != 1 {
		t.Fatalf("expected both jobs to run once, got %d/%d", failing.runs, ok.runs)
	}
	if got := counterValue(t, reg, "failure", "fail"); got != 1 {
		t.Fatalf("expected failure metric 1, got %v", got)
	}
	if got := counterValue(t, reg, "success", "success"); got != 1 {
		t.Fatalf("expected success metric 1, got %v", got)
	}
}

func TestHeldLockSkipsJob(t *testing.T) {
	job := &testJob{name: "heartbeat"}
	registry := NewRegistry()
	registry.Register(job, Every(time.Minute))

	reg := prometheus.NewRegistry()
	service := newTestService(t, registry, heldLock{}, reg, time.Now())

	if err := service.RunOnce(context.Background(), "heartbeat"); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run while the lock is held elsewhere")
	}
	if got := counterValue(t, reg, "skipped", "heartbeat"); got != 1 {
		t.Fatalf("expected skipped metric 1, got %v", got)
	}
}

func TestRunOnce(t *testing.T) {
	failing := &testJob{name: "weekly-report", err: errors.New("endpoint down")}
	registry := NewRegistry()
	registry.Register(failing, Weekly(time.Monday, 6, 0))
	service := newTestService(t, registry, NewLocalLock(), nil, time.Now())

	if err := service.RunOnce(context.Background(), "weekly-report"); err == nil || !strings.Contains(err.Error(), "endpoint down") {
		t.Fatalf("expected job error, got %v", err)
	}
	if err := service.RunOnce(context.Background(), "nope"); err == nil {
		t.Fatalf("expected unknown job error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	var logs bytes.Buffer
	registry := NewRegistry()
	registry.Register(&testJob{name: "heartbeat"}, Every(5*time.Minute))
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: &logs}),
		Registry: registry,
		Lock:     NewLocalLock(),
		Tick:     time.Millisecond,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := service.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if !strings.Contains(logs.String(), "job scheduled") {
		t.Fatalf("expected schedule log, got %s", logs.String())
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: NewLocalLock()}); err == nil {
		t.Fatalf("expected logger error")
	}
	if _, err := NewService(ServiceParams{Logger: logger.New(logger.Options{Output: io.Discard})}); err == nil {
		t.Fatalf("expected lock error")
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, outcome, job string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "crm_job_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabel(m, "job", job) && hasLabel(m, "outcome", outcome) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, l := range m.GetLabel() {
		if l.GetName() == name && l.GetValue() == value {
			return true
		}
	}
	return false
}
