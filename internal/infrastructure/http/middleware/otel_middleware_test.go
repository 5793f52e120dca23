package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/peterbokern/makibeans/internal/infrastructure/telemetry"
)

func newRouter(seen *string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(HTTPRouteContext())
	r.Use(RouteMetricLabel())
	r.Route("/products", func(r chi.Router) {
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			*seen = telemetry.HTTPRouteFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

// serveLabeled runs the request the way otelhttp does: with a labeler in the
// context that is read after the handler returns.
func serveLabeled(h http.Handler, target string) (*httptest.ResponseRecorder, []attribute.KeyValue) {
	labeler := &otelhttp.Labeler{}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(otelhttp.ContextWithLabeler(req.Context(), labeler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, labeler.Get()
}

func TestRouteMetricLabel_UsesPatternNotPath(t *testing.T) {
	var seen string
	h := newRouter(&seen)

	for _, id := range []string{"a1", "b2", "c3"} {
		rec, attrs := serveLabeled(h, "/products/"+id)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []attribute.KeyValue{attribute.String("http.route", "/products/{id}")}, attrs)
	}
}

func TestRouteMetricLabel_UnmatchedRouteHasNoLabel(t *testing.T) {
	var seen string
	h := newRouter(&seen)

	rec, attrs := serveLabeled(h, "/nowhere/42")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, attrs)
}

func TestHTTPRouteContext_ResolvesMatchedPattern(t *testing.T) {
	var seen string
	h := newRouter(&seen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/abc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/products/{id}", seen)
}
