package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/categories/{slug}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, slug := range []string{"bonus", "leave"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/categories/"+slug, nil))
	}

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/categories/{slug}", http.MethodGet, "404"))
	assert.Equal(t, float64(2), got)
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.CategoryViewed("bonus", true)
	m.Searched(0)
	m.Searched(3)
	m.RequestSubmitted("high")
	m.ManualWritten("created")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.categoryViews.WithLabelValues("bonus", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.searches.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.searches.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("high")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.manualWrites.WithLabelValues("created")))

	var nilMetrics *Metrics
	nilMetrics.Searched(1)
}

func TestHandler_ExposesGaugeFunc(t *testing.T) {
	m := New()
	m.GaugeFunc("sse", "clients", "Connected SSE clients.", func() float64 { return 3 })
	m.Searched(1)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "tebiki_sse_clients 3")
	assert.True(t, strings.Contains(body, `tebiki_search_queries_total{result="hit"} 1`))
}
