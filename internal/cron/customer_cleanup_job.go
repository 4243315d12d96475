package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/crm-backend/pkg/joblog"
	"github.com/angelmondragon/crm-backend/pkg/logger"
)

const defaultCleanupWindow = 365 * 24 * time.Hour

type CustomerCleanupJobParams struct {
	Logger    *logger.Logger
	Sink      joblog.Sink
	Customers customerCleaner
	Window    time.Duration
}

// NewCustomerCleanupJob deletes customers without an order inside the window.
// It works on the store directly rather than through GraphQL.
func NewCustomerCleanupJob(params CustomerCleanupJobParams) (Job, error) {
	base, err := newJobBase(params.Logger, params.Sink)
	if err != nil {
		return nil, err
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer service required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultCleanupWindow
	}
	return &customerCleanupJob{jobBase: base, customers: params.Customers, window: window}, nil
}

type customerCleanupJob struct {
	jobBase
	customers customerCleaner
	window    time.Duration
}

func (j *customerCleanupJob) Name() string { return "customer-cleanup" }

func (j *customerCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.window)
	deleted, err := j.customers.DeleteInactive(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("customer cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"cutoff": cutoff, "rows_deleted": deleted})
	j.logg.Info(logCtx, "customer cleanup complete")
	return j.sink.Append(fmt.Sprintf("%s Deleted customers without orders in last year: %d", j.stamp(), deleted))
}
