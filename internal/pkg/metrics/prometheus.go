package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "setlistr",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "setlistr",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "setlistr",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Authorization metrics
	accessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "setlistr",
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Band access decisions by actor kind and outcome",
		},
		[]string{"actor", "outcome"},
	)

	// Member session metrics
	memberSessionLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "setlistr",
			Subsystem: "member_session",
			Name:      "lookups_total",
			Help:      "Member token lookups by source and result",
		},
		[]string{"source", "result"},
	)

	// Template metrics
	templateTransforms = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "setlistr",
			Subsystem: "template",
			Name:      "transforms_total",
			Help:      "Template and setlist conversions by direction",
		},
		[]string{"direction"},
	)

	// Subscription metrics
	subscriptionSweepExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "setlistr",
			Subsystem: "subscription",
			Name:      "expired_total",
			Help:      "Trials and subscriptions expired by the sweeper",
		},
	)

	subscriptionSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "setlistr",
			Subsystem: "subscription",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of subscription sweeps in seconds",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10},
		},
	)

	// Outbound integration metrics
	integrationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "setlistr",
			Subsystem: "integration",
			Name:      "calls_total",
			Help:      "Calls to external services by service and status",
		},
		[]string{"service", "status"},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "setlistr",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAccessDecision records the outcome of a band access check.
// outcome is one of "granted", "unauthenticated", "forbidden" or "missing".
func RecordAccessDecision(actor, outcome string) {
	accessDecisions.WithLabelValues(actor, outcome).Inc()
}

// RecordMemberLookup records a member token lookup. source is "cache" or
// "db"; result is "hit" or "miss".
func RecordMemberLookup(source, result string) {
	memberSessionLookups.WithLabelValues(source, result).Inc()
}

// RecordTemplateTransform counts a conversion ("to_template" or "to_setlist").
func RecordTemplateTransform(direction string) {
	templateTransforms.WithLabelValues(direction).Inc()
}

// RecordSubscriptionSweep records one sweeper run.
func RecordSubscriptionSweep(expired int, duration time.Duration) {
	subscriptionSweepExpired.Add(float64(expired))
	subscriptionSweepDuration.Observe(duration.Seconds())
}

// RecordIntegrationCall records a call to stripe, smtp, s3 or gcs.
func RecordIntegrationCall(service string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	integrationCalls.WithLabelValues(service, status).Inc()
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
