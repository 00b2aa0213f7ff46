package handler

import (
	"net/http"

	"github.com/mbittar/finsights-engine-go/internal/engine"
	"github.com/mbittar/finsights-engine-go/internal/infra/observability"
	"github.com/mbittar/finsights-engine-go/internal/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// AuthConfig controls the optional bearer-token guard on /v1 routes.
type AuthConfig struct {
	Required bool
	Secret   string
}

// NewRouter creates the HTTP router with all routes and middleware.
// The engine is the only mandatory dependency; fetcher may be nil when no
// enhanced-analytics provider is configured.
func NewRouter(eng *engine.Engine, fetcher port.EnhancedFetcher, metrics *observability.Metrics, logger *zap.Logger, auth AuthConfig) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if auth.Required {
			r.Use(JWTAuthMiddleware(auth.Secret, logger))
		}

		r.Route("/analytics", func(r chi.Router) {
			r.Post("/forecast", forecastHandler(eng, fetcher, metrics, logger))
			r.Post("/health-score", healthScoreHandler(eng, fetcher, metrics, logger))
			r.Post("/suggestions", suggestionsHandler(eng, fetcher, metrics, logger))
			r.Post("/overview", overviewHandler(eng, fetcher, metrics, logger))
		})

		r.Get("/metrics/engine", engineMetricsHandler(metrics, logger))
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
