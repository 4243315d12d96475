package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/crm-backend/pkg/crmclient"
	"github.com/angelmondragon/crm-backend/pkg/joblog"
	"github.com/angelmondragon/crm-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	heartbeatLayout = "02/01/2006-15:04:05"
	stampLayout     = "2006-01-02 15:04:05"
)

type helloClient interface {
	Hello(ctx context.Context) (string, error)
}

type lowStockClient interface {
	UpdateLowStock(ctx context.Context) (*crmclient.LowStockResult, error)
}

type orderWalker interface {
	EachOrder(ctx context.Context, since *time.Time, fn func(crmclient.OrderSummary) error) error
}

type reportClient interface {
	CountCustomers(ctx context.Context) (int, error)
	OrderTotals(ctx context.Context) (int, decimal.Decimal, error)
}

type customerCleaner interface {
	DeleteInactive(ctx context.Context, cutoff time.Time) (int64, error)
}

// jobBase carries what every job needs to write its log file.
type jobBase struct {
	logg *logger.Logger
	sink joblog.Sink
	now  func() time.Time
}

func newJobBase(logg *logger.Logger, sink joblog.Sink) (jobBase, error) {
	if logg == nil {
		return jobBase{}, fmt.Errorf("logger required")
	}
	if sink == nil {
		return jobBase{}, fmt.Errorf("log sink required")
	}
	return jobBase{logg: logg, sink: sink, now: time.Now}, nil
}

func (b jobBase) stamp() string {
	return b.now().Format(stampLayout)
}
