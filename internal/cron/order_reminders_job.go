package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/crm-backend/pkg/crmclient"
	"github.com/angelmondragon/crm-backend/pkg/joblog"
	"github.com/angelmondragon/crm-backend/pkg/logger"
	"go.uber.org/multierr"
)

const defaultReminderWindow = 7 * 24 * time.Hour

type OrderRemindersJobParams struct {
	Logger *logger.Logger
	Sink   joblog.Sink
	Client orderWalker
	Window time.Duration
}

// NewOrderRemindersJob logs a reminder for every order placed inside the
// window.
func NewOrderRemindersJob(params OrderRemindersJobParams) (Job, error) {
	base, err := newJobBase(params.Logger, params.Sink)
	if err != nil {
		return nil, err
	}
	if params.Client == nil {
		return nil, fmt.Errorf("graphql client required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultReminderWindow
	}
	return &orderRemindersJob{jobBase: base, client: params.Client, window: window}, nil
}

type orderRemindersJob struct {
	jobBase
	client orderWalker
	window time.Duration
}

func (j *orderRemindersJob) Name() string { return "order-reminders" }

func (j *orderRemindersJob) Run(ctx context.Context) error {
	since := j.now().UTC().Add(-j.window)

	var orders []crmclient.OrderSummary
	err := j.client.EachOrder(ctx, &since, func(o crmclient.OrderSummary) error {
		orders = append(orders, o)
		return nil
	})
	ts := j.stamp()
	if err != nil {
		return multierr.Append(err, j.sink.Append(fmt.Sprintf("%s ERROR querying GraphQL: %v", ts, err)))
	}

	var errs error
	for _, o := range orders {
		errs = multierr.Append(errs, j.sink.Append(fmt.Sprintf("%s Reminder: order_id=%s email=%s", ts, o.ID, o.CustomerEmail)))
	}
	j.logg.Info(j.logg.WithField(ctx, "orders", len(orders)), "Order reminders processed!")
	return errs
}
