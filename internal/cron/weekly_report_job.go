package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/crm-backend/pkg/joblog"
	"github.com/angelmondragon/crm-backend/pkg/logger"
	"go.uber.org/multierr"
)

type WeeklyReportJobParams struct {
	Logger *logger.Logger
	Sink   joblog.Sink
	Client reportClient
}

// NewWeeklyReportJob logs customer and order totals plus revenue.
func NewWeeklyReportJob(params WeeklyReportJobParams) (Job, error) {
	base, err := newJobBase(params.Logger, params.Sink)
	if err != nil {
		return nil, err
	}
	if params.Client == nil {
		return nil, fmt.Errorf("graphql client required")
	}
	return &weeklyReportJob{jobBase: base, client: params.Client}, nil
}

type weeklyReportJob struct {
	jobBase
	client reportClient
}

func (j *weeklyReportJob) Name() string { return "weekly-report" }

func (j *weeklyReportJob) Run(ctx context.Context) error {
	customers, err := j.client.CountCustomers(ctx)
	if err != nil {
		return j.fail(err)
	}
	orders, revenue, err := j.client.OrderTotals(ctx)
	if err != nil {
		return j.fail(err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"customers": customers,
		"orders":    orders,
		"revenue":   revenue.StringFixed(2),
	})
	j.logg.Info(logCtx, "weekly report generated")
	return j.sink.Append(fmt.Sprintf("%s - Report: %d customers, %d orders, %s revenue", j.stamp(), customers, orders, revenue.StringFixed(2)))
}

func (j *weeklyReportJob) fail(err error) error {
	return multierr.Append(err, j.sink.Append(fmt.Sprintf("%s - ERROR: %v", j.stamp(), err)))
}
