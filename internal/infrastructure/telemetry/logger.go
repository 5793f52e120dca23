package telemetry

import (
	"context"
	"io"
	"log/slog"

	"github.com/peterbokern/makibeans/internal/infrastructure/config"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const httpRouteKey contextKey = "http.route"

// WithHTTPRoute adds a fixed HTTP route to the context
func WithHTTPRoute(ctx context.Context, route string) context.Context {
	return WithHTTPRouteFunc(ctx, func() string { return route })
}

// WithHTTPRouteFunc adds a route resolver to the context. The resolver is
// called at log time, so routers that match after middleware runs still
// report the final pattern.
func WithHTTPRouteFunc(ctx context.Context, route func() string) context.Context {
	return context.WithValue(ctx, httpRouteKey, route)
}

// HTTPRouteFromContext extracts the HTTP route from context
func HTTPRouteFromContext(ctx context.Context) string {
	if route, ok := ctx.Value(httpRouteKey).(func() string); ok {
		return route()
	}
	return ""
}

// traceContextHandler decorates records with the active span and HTTP route
type traceContextHandler struct {
	handler slog.Handler
}

// Enabled reports whether the handler handles records at the given level
func (h *traceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds trace_id, span_id and http.route from the context
func (h *traceContextHandler) Handle(ctx context.Context, r slog.Record) error {
	// Add trace context if available
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	// Add HTTP route if available in context
	if route := HTTPRouteFromContext(ctx); route != "" {
		r.AddAttrs(slog.String("http.route", route))
	}

	return h.handler.Handle(ctx, r)
}

func (h *traceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *traceContextHandler) WithGroup(name string) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithGroup(name)}
}

// NewLogger builds the JSON logger used across the service, writing to w at cfg.LogLevel
func NewLogger(w io.Writer, cfg *config.OTLPConfig) *slog.Logger {
	// Create JSON handler for structured logging
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel})

	// Wrap with trace context handler
	return slog.New(&traceContextHandler{handler: jsonHandler}).With(
		slog.String("service.name", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)
}
