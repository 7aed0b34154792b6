package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kdprince200-netizen/equiherds-sub003/internal/accounts"
	"github.com/kdprince200-netizen/equiherds-sub003/internal/cron"
	"github.com/kdprince200-netizen/equiherds-sub003/internal/renewals"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/config"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/logger"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/metrics"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/migrate"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/redis"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/stripe"
)

const lockKeyFormat = "renewal-worker:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "renewal-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "renewal-worker"

	logg = logger.New(logger.Options{
		ServiceName: "renewal-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	renewalMetrics := metrics.NewRenewalMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	repo := accounts.NewRepository(dbClient.DB())

	renewalService, err := renewals.NewService(renewals.ServiceParams{
		Store:   repo,
		Gateway: renewals.NewStripeClient(stripeClient),
		Logger:  logg,
		Metrics: renewalMetrics,
		Billing: cfg.Billing,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create renewal service", err)
		os.Exit(1)
	}

	sweepJob, err := cron.NewRenewalSweepJob(cron.RenewalSweepJobParams{
		Logger:   logg,
		Accounts: repo,
		Renewals: renewalService,
		Limit:    cfg.Billing.SweepLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create renewal sweep job", err)
		os.Exit(1)
	}

	backfillJob, err := cron.NewLedgerBackfillJob(cron.LedgerBackfillJobParams{
		Logger:  logg,
		Store:   repo,
		Metrics: renewalMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger backfill job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockKey(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweepJob, backfillJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Billing.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting renewal worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "renewal worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "renewal worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
