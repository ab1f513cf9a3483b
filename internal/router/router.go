package router

import (
	"net/http"

	"github.com/evyataryagoni/countrydir/internal/handler"
	"github.com/evyataryagoni/countrydir/internal/limiter"
	"github.com/evyataryagoni/countrydir/internal/logger"
	"github.com/evyataryagoni/countrydir/internal/metrics"
	custommiddleware "github.com/evyataryagoni/countrydir/internal/middleware"
	v1 "github.com/evyataryagoni/countrydir/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates the Chi router with all middleware and routes.
// gatherer serves /metrics; nil uses the default Prometheus registry.
func SetupRouter(countryHandler *handler.CountryHandler, actionLimiter limiter.Limiter, m *metrics.Metrics, gatherer prometheus.Gatherer, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// Order matters: request id before logging, recoverer inside logging
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.MetricsMiddleware(m))

	r.Mount("/v1", v1.SetupRoutes(countryHandler, custommiddleware.RateLimitMiddleware(actionLimiter, m)))

	r.Get("/health", healthCheckHandler)

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// healthCheckHandler returns 200 OK while the process is serving
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
