package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kdprince200-netizen/equiherds-sub003/api/routes"
	"github.com/kdprince200-netizen/equiherds-sub003/internal/accounts"
	"github.com/kdprince200-netizen/equiherds-sub003/internal/renewals"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/config"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/logger"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/metrics"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/migrate"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/redis"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	renewalService, err := renewals.NewService(renewals.ServiceParams{
		Store:   accounts.NewRepository(dbClient.DB()),
		Gateway: renewals.NewStripeClient(stripeClient),
		Logger:  logg,
		Metrics: renewalMetrics,
		Billing: cfg.Billing,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create renewal service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			Renewals: renewalService,
			DB:       dbClient,
			Redis:    redisClient,
			Metrics:  registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
