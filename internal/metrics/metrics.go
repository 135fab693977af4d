// Package metrics holds the Prometheus collectors for the portal.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tebiki"

// Metrics owns a private registry so that several instances (tests, the MCP
// server) never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	categoryViews *prometheus.CounterVec
	searches      *prometheus.CounterVec
	requests      *prometheus.CounterVec
	manualWrites  *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests broken down by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets: []float64{
				0.001, 0.002, 0.005,
				0.01, 0.02, 0.05, 0.1,
				0.2, 0.5, 1, 2,
			},
		}, []string{"route", "method"}),
		categoryViews: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "browse",
			Name:      "category_views_total",
			Help:      "Category pages served, by slug and whether a facet filter was active.",
		}, []string{"slug", "filtered"}),
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Search queries, by whether anything matched.",
		}, []string{"result"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "requests_total",
			Help:      "Manual requests submitted, by urgency.",
		}, []string{"urgency"}),
		manualWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "manual_writes_total",
			Help:      "Admin manual mutations, by kind.",
		}, []string{"kind"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware records count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// GaugeFunc registers a gauge whose value is read from fn at scrape time.
func (m *Metrics) GaugeFunc(subsystem, name, help string, fn func() float64) {
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, fn)
}

// CategoryViewed counts one category page.
func (m *Metrics) CategoryViewed(slug string, filtered bool) {
	if m == nil {
		return
	}
	m.categoryViews.WithLabelValues(slug, strconv.FormatBool(filtered)).Inc()
}

// Searched counts one search.
func (m *Metrics) Searched(hits int) {
	if m == nil {
		return
	}
	result := "hit"
	if hits == 0 {
		result = "miss"
	}
	m.searches.WithLabelValues(result).Inc()
}

// RequestSubmitted counts one accepted manual request.
func (m *Metrics) RequestSubmitted(urgency string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(urgency).Inc()
}

// ManualWritten counts one admin create, update or delete.
func (m *Metrics) ManualWritten(kind string) {
	if m == nil {
		return
	}
	m.manualWrites.WithLabelValues(kind).Inc()
}
