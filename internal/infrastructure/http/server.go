package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/peterbokern/makibeans/internal/infrastructure/config"
	"github.com/peterbokern/makibeans/internal/infrastructure/http/handler"
	"github.com/peterbokern/makibeans/internal/infrastructure/http/middleware"
	"github.com/peterbokern/makibeans/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     *config.ServerConfig
	products   *handler.ProductHandler
	catalog    *handler.CatalogHandler
	logger     *slog.Logger
	telemetry  *telemetry.Telemetry
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.ServerConfig,
	products *handler.ProductHandler,
	catalog *handler.CatalogHandler,
	logger *slog.Logger,
	telem *telemetry.Telemetry,
) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		products:  products,
		catalog:   catalog,
		logger:    logger,
		telemetry: telem,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return s
}

// setupMiddleware configures the middleware chain
func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(middleware.StructuredLogger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// Add HTTP route to context so all logs include it automatically
	s.router.Use(middleware.HTTPRouteContext())

	// Label otelhttp request metrics with the matched route pattern
	s.router.Use(middleware.RouteMetricLabel())

	// Custom HTTP metrics on top of the ones otelhttp records
	meter := s.telemetry.MeterProvider.Meter(s.telemetry.ServiceName)
	s.router.Use(middleware.ActiveRequestsMiddleware(meter))
	if s.config.DurationMillisMetric {
		s.router.Use(middleware.DurationMillisecondsMiddleware(meter))
	}
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Route("/products", func(r chi.Router) {
		r.Post("/", s.products.CreateProduct)
		r.Get("/", s.products.ListProducts)
		r.Get("/{id}", s.products.GetProduct)
	})

	s.router.Get("/categories", s.catalog.ListCategories)
	s.router.Get("/sizes", s.catalog.ListSizes)
	s.router.Get("/attribute-templates", s.catalog.ListAttributeTemplates)
	s.router.Get("/attribute-values", s.catalog.ListAttributeValues)
	s.router.Get("/users", s.catalog.ListUsers)

	// Health check endpoint
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint for OpenTelemetry instruments and runtime collectors
	s.router.Handle("/metrics", promhttp.HandlerFor(s.telemetry.Registry, promhttp.HandlerOpts{}))
}

// Handler returns the router wrapped with otelhttp for automatic HTTP metrics and tracing.
// otelhttp runs before chi matches a route, so route labels come from RouteMetricLabel.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "http-server",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithTracerProvider(s.telemetry.TracerProvider),
		otelhttp.WithMeterProvider(s.telemetry.MeterProvider),
	)
}

// Start starts the HTTP server and blocks until it is shut down
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		slog.String("address", s.httpServer.Addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
