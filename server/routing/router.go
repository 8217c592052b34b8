// Package routing provides configuration-driven routing for the
// leetgate server. It implements versioned API routing and dynamic
// middleware configuration through the YAML route table.
package routing

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/l33tlabs/leetgate/config"
	"github.com/l33tlabs/leetgate/errors"
	"github.com/l33tlabs/leetgate/server/handlers"
	"github.com/l33tlabs/leetgate/server/metrics"
	"github.com/l33tlabs/leetgate/server/middleware"
	"go.uber.org/zap"
)

// Router handles HTTP routing with versioning. It provides:
// - Version-prefixed routing (v1, v2, ...)
// - Per-route middleware configuration
// - Header validation
// - Method restrictions
type Router struct {
	router   chi.Router
	handlers map[string]http.Handler
	logger   *zap.Logger
	cfg      *config.Config
	queue    *middleware.QueueMiddleware
	metrics  *metrics.Metrics
}

// NewRouter creates a new router with the given configuration.
//
// Parameters:
//   - cfg: Gateway configuration containing route definitions
//   - handlerMap: Map of handler names to their implementations
//   - logger: Logger instance for error and debug logging
//   - m: Metrics collector, may be nil
func NewRouter(cfg *config.Config, handlerMap map[string]http.Handler, logger *zap.Logger, m *metrics.Metrics) *Router {
	r := &Router{
		router:   chi.NewRouter(),
		handlers: handlerMap,
		logger:   logger,
		cfg:      cfg,
		metrics:  m,
	}

	if cfg.Queue.Enabled {
		r.queue = middleware.NewQueueMiddleware(middleware.QueueConfig{
			MaxSize: cfg.Queue.MaxSize,
			Metrics: m,
		})
	}

	// Global middleware stack
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RequestTimer)
	r.router.Use(middleware.Recovery(logger))
	r.router.Use(middleware.Logging(logger))
	if m != nil {
		r.router.Use(middleware.PrometheusMetrics(m))
	}
	r.router.Use(middleware.CORS)

	r.setupRoutes()

	return r
}

// setupRoutes configures all routes based on the configuration.
// For each route in the configuration:
// - Adds the version prefix if specified
// - Configures route-specific middleware
// - Sets up header validation
// - Restricts HTTP methods
func (r *Router) setupRoutes() {
	for _, route := range r.cfg.Routes {
		handler, ok := r.handlers[route.Handler]
		if !ok {
			r.logger.Error("handler not found", zap.String("handler", route.Handler))
			continue
		}

		path := route.Path
		if route.Version != "" {
			path = fmt.Sprintf("/%s%s", route.Version, path)
		}

		r.router.Group(func(router chi.Router) {
			for _, mw := range route.Middleware {
				switch mw {
				case "ratelimit":
					router.Use(middleware.RateLimit(r.cfg.RateLimit, r.metrics))
				case "queue":
					if r.queue != nil {
						router.Use(r.queue.Handler)
					}
				default:
					r.logger.Warn("unknown middleware requested", zap.String("middleware", mw))
				}
			}

			// Header validation middleware if headers are specified
			if len(route.Headers) > 0 {
				headers := route.Headers
				router.Use(func(next http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
						for key, value := range headers {
							if req.Header.Get(key) != value {
								errors.ErrorWithType(w, fmt.Sprintf("missing or invalid header: %s", key),
									errors.ValidationError, http.StatusBadRequest)
								return
							}
						}
						next.ServeHTTP(w, req)
					})
				})
			}

			methods := route.Methods
			if len(methods) == 0 {
				methods = []string{"GET"}
			}

			for _, method := range methods {
				router.Method(method, path, handler)
			}
		})
	}

	// Global health check endpoint
	r.router.Get("/health", handlers.HealthHandler().ServeHTTP)
}

// ServeHTTP implements the http.Handler interface.
// Delegates request handling to the underlying Chi router.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
