package router

import (
	"net/http"

	"github.com/evyataryagoni/ipscope/internal/handler"
	"github.com/evyataryagoni/ipscope/internal/limiter"
	"github.com/evyataryagoni/ipscope/internal/logger"
	"github.com/evyataryagoni/ipscope/internal/metrics"
	custommiddleware "github.com/evyataryagoni/ipscope/internal/middleware"
	v1 "github.com/evyataryagoni/ipscope/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options holds the collaborators of the HTTP router
type Options struct {
	Handler     *handler.LookupHandler
	Limiter     limiter.Limiter
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer // served at /metrics
	Logger      *logger.Logger
	CORSOrigins []string
}

// SetupRouter creates the chi router with all middleware and routes
func SetupRouter(opts Options) chi.Router {
	r := chi.NewRouter()

	// Order matters: RealIP must run before anything that reads the client address
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(custommiddleware.RateLimitMiddleware(opts.Limiter, opts.Logger))
	r.Use(custommiddleware.MetricsMiddleware(opts.Metrics))

	r.Mount("/v1", v1.SetupRoutes(opts.Handler))

	// Unversioned operational endpoints
	r.Get("/health", healthCheckHandler)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// healthCheckHandler reports that the process is serving
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
