package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/crm-backend/pkg/joblog"
	"github.com/angelmondragon/crm-backend/pkg/logger"
)

type HeartbeatJobParams struct {
	Logger *logger.Logger
	Sink   joblog.Sink
	Client helloClient
}

// NewHeartbeatJob records that the CRM is alive, then pokes the GraphQL
// endpoint. The probe's outcome does not affect the job.
func NewHeartbeatJob(params HeartbeatJobParams) (Job, error) {
	base, err := newJobBase(params.Logger, params.Sink)
	if err != nil {
		return nil, err
	}
	if params.Client == nil {
		return nil, fmt.Errorf("graphql client required")
	}
	return &heartbeatJob{jobBase: base, client: params.Client}, nil
}

type heartbeatJob struct {
	jobBase
	client helloClient
}

func (j *heartbeatJob) Name() string { return "heartbeat" }

func (j *heartbeatJob) Run(ctx context.Context) error {
	if err := j.sink.Append(j.now().Format(heartbeatLayout) + " CRM is alive"); err != nil {
		return err
	}
	if _, err := j.client.Hello(ctx); err != nil {
		j.logg.Warn(j.logg.WithField(ctx, "error", err.Error()), "heartbeat hello query failed")
	}
	return nil
}
