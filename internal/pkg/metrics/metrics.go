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
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lootaura",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lootaura",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lootaura",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// AdmissionOutcomes counts result-applier decisions per lane:
	// ok, stale, incompatible, invalid.
	AdmissionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lootaura",
		Subsystem: "search",
		Name:      "admission_outcomes_total",
		Help:      "Result batches admitted or dropped, by lane and outcome",
	}, []string{"lane", "outcome"})

	// ResolverTierHits counts which tier of the location priority chain
	// produced the initial viewport.
	ResolverTierHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lootaura",
		Subsystem: "location",
		Name:      "resolver_tier_hits_total",
		Help:      "Initial location resolutions by winning tier",
	}, []string{"tier"})

	// GeocodeErrors counts collaborator lookup failures (all recovered by
	// falling through the chain).
	GeocodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lootaura",
		Subsystem: "location",
		Name:      "lookup_errors_total",
		Help:      "Geocoding and IP-geolocation lookup failures",
	}, []string{"provider"})

	// ActiveSessions tracks live entries in the session registry.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lootaura",
		Subsystem: "search",
		Name:      "active_sessions",
		Help:      "Current number of live browsing sessions",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lootaura",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lootaura",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lootaura",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
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
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
