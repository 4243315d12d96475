package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/crm-backend/pkg/joblog"
	"github.com/angelmondragon/crm-backend/pkg/logger"
	"go.uber.org/multierr"
)

type LowStockJobParams struct {
	Logger *logger.Logger
	Sink   joblog.Sink
	Client lowStockClient
}

// NewLowStockJob restocks low products through the GraphQL mutation and logs
// every product it touched.
func NewLowStockJob(params LowStockJobParams) (Job, error) {
	base, err := newJobBase(params.Logger, params.Sink)
	if err != nil {
		return nil, err
	}
	if params.Client == nil {
		return nil, fmt.Errorf("graphql client required")
	}
	return &lowStockJob{jobBase: base, client: params.Client}, nil
}

type lowStockJob struct {
	jobBase
	client lowStockClient
}

func (j *lowStockJob) Name() string { return "low-stock" }

func (j *lowStockJob) Run(ctx context.Context) error {
	ts := j.stamp()
	res, err := j.client.UpdateLowStock(ctx)
	if err != nil {
		return multierr.Append(err, j.sink.Append(fmt.Sprintf("%s ERROR: %v", ts, err)))
	}

	var errs error
	for _, p := range res.Products {
		errs = multierr.Append(errs, j.sink.Append(fmt.Sprintf("%s Updated '%s' -> stock=%d", ts, p.Name, p.Stock)))
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"restocked": len(res.Products), "message": res.Message})
	j.logg.Info(logCtx, "low stock update complete")
	return errs
}
