package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kdprince200-netizen/equiherds-sub003/api/controllers"
	"github.com/kdprince200-netizen/equiherds-sub003/api/middleware"
	"github.com/kdprince200-netizen/equiherds-sub003/internal/renewals"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/config"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/logger"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Renewals renewals.Service
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Metrics  prometheus.Gatherer
}

// NewRouter wires the billing API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(params.Logger),
		middleware.RequestID(params.Logger),
		middleware.Logging(params.Logger),
	)

	r.Get("/health", controllers.HealthLive(params.Config))
	r.Get("/health/ready", controllers.HealthReady(params.Config, params.Logger, map[string]controllers.Pinger{
		"database": params.DB,
		"redis":    params.Redis,
	}))

	if params.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/billing/renewals", controllers.RenewSubscription(params.Renewals, params.Logger))
		r.Get("/accounts/{id}/billing", controllers.AccountBilling(params.Renewals, params.Logger))
	})

	return r
}
