package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/metricops/anomalyd/docs"
	"github.com/metricops/anomalyd/internal/api/handlers"
	"github.com/metricops/anomalyd/internal/api/middleware"
	"github.com/metricops/anomalyd/internal/config"
	"github.com/metricops/anomalyd/internal/pkg/logger"
	"github.com/metricops/anomalyd/internal/pkg/metrics"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Detect *handlers.DetectHandler
	Runs   *handlers.RunsHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Prometheus metrics
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Health checks
	r.Get("/health", h.Health.Healthz)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)

	// Detection API
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/detect", h.Detect.Detect)
		r.Post("/detect/verbose", h.Detect.DetectVerbose)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.Runs.List)
			r.Get("/{id}", h.Runs.Get)
		})
	})

	return r
}
