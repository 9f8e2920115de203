// Package metrics exposes Prometheus instrumentation for the HTTP
// layer, the siting engine and the upstream data providers.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "windsite",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "windsite",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	// OptimizeRuns counts siting runs by final status.
	OptimizeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "windsite",
		Subsystem: "siting",
		Name:      "optimize_runs_total",
		Help:      "Siting optimization runs by status (ok, partial, failed).",
	}, []string{"status"})

	// SitesPlaced counts turbine sites produced across all runs.
	SitesPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "windsite",
		Subsystem: "siting",
		Name:      "sites_placed_total",
		Help:      "Total turbine sites placed across all optimization runs.",
	})

	// OptimizeDuration tracks end-to-end siting run latency.
	OptimizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "windsite",
		Subsystem: "siting",
		Name:      "optimize_duration_seconds",
		Help:      "End-to-end siting optimization latency in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// ProviderRequests counts upstream fetches by provider and outcome.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "windsite",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Upstream provider fetches by provider and outcome (ok, failed).",
	}, []string{"provider", "outcome"})

	// ProviderDuration tracks upstream fetch latency by provider.
	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "windsite",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Upstream provider fetch latency in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	}, []string{"provider"})
)

// Middleware records request count and latency for every route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}

		HTTPRequestsTotal.WithLabelValues(c.Method(), path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Method(), path).Observe(duration)
		return err
	}
}

// Handler serves the Prometheus scrape endpoint through fiber.
func Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	}
}
