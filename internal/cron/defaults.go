package cron

import (
	"fmt"
	"time"

	"github.com/angelmondragon/crm-backend/pkg/config"
	"github.com/angelmondragon/crm-backend/pkg/joblog"
	"github.com/angelmondragon/crm-backend/pkg/logger"
)

// GraphQLClient is the endpoint surface the GraphQL-driven jobs call.
type GraphQLClient interface {
	helloClient
	lowStockClient
	orderWalker
	reportClient
}

// DefaultJobsParams wires the standard CRM jobs.
type DefaultJobsParams struct {
	Logger    *logger.Logger
	Config    config.CronConfig
	Client    GraphQLClient
	Customers customerCleaner
	// Sinks overrides the file sink per job name.
	Sinks map[string]joblog.Sink
}

// NewDefaultRegistry registers heartbeat, low-stock, customer-cleanup,
// order-reminders and weekly-report with their production schedules.
func NewDefaultRegistry(params DefaultJobsParams) (*Registry, error) {
	cfg := params.Config
	sink := func(job, path string) joblog.Sink {
		if s, ok := params.Sinks[job]; ok {
			return s
		}
		return joblog.NewFile(path)
	}

	heartbeat, err := NewHeartbeatJob(HeartbeatJobParams{
		Logger: params.Logger,
		Sink:   sink("heartbeat", cfg.HeartbeatLog),
		Client: params.Client,
	})
	if err != nil {
		return nil, fmt.Errorf("heartbeat job: %w", err)
	}
	lowStock, err := NewLowStockJob(LowStockJobParams{
		Logger: params.Logger,
		Sink:   sink("low-stock", cfg.LowStockLog),
		Client: params.Client,
	})
	if err != nil {
		return nil, fmt.Errorf("low-stock job: %w", err)
	}
	cleanup, err := NewCustomerCleanupJob(CustomerCleanupJobParams{
		Logger:    params.Logger,
		Sink:      sink("customer-cleanup", cfg.CleanupLog),
		Customers: params.Customers,
		Window:    cfg.CleanupWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("customer-cleanup job: %w", err)
	}
	reminders, err := NewOrderRemindersJob(OrderRemindersJobParams{
		Logger: params.Logger,
		Sink:   sink("order-reminders", cfg.OrderReminderLog),
		Client: params.Client,
		Window: cfg.ReminderWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("order-reminders job: %w", err)
	}
	report, err := NewWeeklyReportJob(WeeklyReportJobParams{
		Logger: params.Logger,
		Sink:   sink("weekly-report", cfg.ReportLog),
		Client: params.Client,
	})
	if err != nil {
		return nil, fmt.Errorf("weekly-report job: %w", err)
	}

	registry := NewRegistry()
	registry.Register(heartbeat, Every(5*time.Minute))
	registry.Register(lowStock, Every(12*time.Hour))
	registry.Register(cleanup, Weekly(time.Sunday, 2, 0))
	registry.Register(reminders, Daily(8, 0))
	registry.Register(report, Weekly(time.Monday, 6, 0))
	return registry, nil
}
