package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/crm-backend/internal/cron"
	"github.com/angelmondragon/crm-backend/internal/customers"
	"github.com/angelmondragon/crm-backend/internal/orders"
	"github.com/angelmondragon/crm-backend/internal/seed"
	"github.com/angelmondragon/crm-backend/pkg/config"
	"github.com/angelmondragon/crm-backend/pkg/crmclient"
	"github.com/angelmondragon/crm-backend/pkg/db"
	"github.com/angelmondragon/crm-backend/pkg/logger"
	"github.com/angelmondragon/crm-backend/pkg/migrate"
	"github.com/angelmondragon/crm-backend/pkg/redis"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "crmctl",
		Usage: "operate the CRM backend from the command line",
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "insert the sample customers, products and orders",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "fake-customers", Usage: "also generate N random customers"},
					&cli.Uint64Flag{Name: "fake-seed", Usage: "random seed for generated customers (0 is random)"},
				},
				Action: seedAction,
			},
			{
				Name:  "jobs",
				Usage: "inspect and trigger scheduled jobs",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "print every registered job and its schedule",
						Action: jobsListAction,
					},
					{
						Name:      "run",
						Usage:     "run one job immediately",
						ArgsUsage: "<job>",
						Action:    jobsRunAction,
					},
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type deps struct {
	cfg   *config.Config
	logg  *logger.Logger
	db    *db.Client
	redis *redis.Client
}

func bootstrap(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logg := logger.New(logger.Options{
		ServiceName: "crmctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("dev migrations: %w", err)
	}
	return &deps{cfg: cfg, logg: logg, db: client}, nil
}

func (r *deps) customers() (customers.Service, error) {
	return customers.NewService(customers.ServiceParams{
		Repo: customers.NewRepository(r.db.DB()),
		Tx:   r.db,
	})
}

func seedAction(c *cli.Context) error {
	rt, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	customerSvc, err := rt.customers()
	if err != nil {
		return err
	}
	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo: orders.NewRepository(rt.db.DB()),
		Tx:   rt.db,
	})
	if err != nil {
		return err
	}
	seeder, err := seed.New(seed.Params{
		DB:        rt.db.DB(),
		Customers: customerSvc,
		Orders:    orderSvc,
		Logger:    rt.logg,
		FakeSeed:  c.Uint64("fake-seed"),
	})
	if err != nil {
		return err
	}

	summary, err := seeder.Run(c.Context, seed.Options{FakeCustomers: c.Int("fake-customers")})
	if err != nil {
		return err
	}
	for _, msg := range summary.FakeRejected {
		fmt.Fprintln(c.App.ErrWriter, "skipped:", msg)
	}
	fmt.Fprintln(c.App.Writer, summary.String())
	return nil
}

func (r *deps) scheduler(ctx context.Context) (*cron.Service, *cron.Registry, func(), error) {
	cleanup := func() {}

	client, err := crmclient.NewFromConfig(r.cfg)
	if err != nil {
		return nil, nil, cleanup, err
	}
	customerSvc, err := r.customers()
	if err != nil {
		return nil, nil, cleanup, err
	}
	registry, err := cron.NewDefaultRegistry(cron.DefaultJobsParams{
		Logger:    r.logg,
		Config:    r.cfg.Cron,
		Client:    client,
		Customers: customerSvc,
	})
	if err != nil {
		return nil, nil, cleanup, err
	}

	// A manual run takes the same per-job lock as the worker when Redis is set.
	var lock cron.Lock = cron.NewLocalLock()
	if r.cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, r.cfg.Redis, r.logg)
		if err != nil {
			return nil, nil, cleanup, err
		}
		r.redis = redisClient
		cleanup = func() { _ = redisClient.Close() }
		if lock, err = cron.NewRedisLock(redisClient, r.cfg.Cron.LockTTL); err != nil {
			return nil, nil, cleanup, err
		}
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   r.logg,
		Registry: registry,
		Lock:     lock,
	})
	return service, registry, cleanup, err
}

func jobsListAction(c *cli.Context) error {
	rt, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	_, registry, cleanup, err := rt.scheduler(c.Context)
	defer cleanup()
	if err != nil {
		return err
	}
	for _, e := range registry.Entries() {
		holder := "-"
		if rt.redis != nil {
			owner, err := rt.redis.LockOwner(c.Context, e.Job.Name())
			if err != nil {
				return err
			}
			if owner != "" {
				holder = owner
			}
		}
		fmt.Fprintf(c.App.Writer, "%-18s %-28s locked-by=%s\n", e.Job.Name(), e.Schedule, holder)
	}
	return nil
}

func jobsRunAction(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("missing job name; see `crmctl jobs list`", 2)
	}

	rt, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	service, _, cleanup, err := rt.scheduler(c.Context)
	defer cleanup()
	if err != nil {
		return err
	}
	if err := service.RunOnce(c.Context, name); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s finished\n", name)
	return nil
}
