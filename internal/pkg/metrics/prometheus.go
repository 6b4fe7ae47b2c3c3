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
			Namespace: "anomalyd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "anomalyd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "anomalyd",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Detection metrics
	detectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anomalyd",
			Subsystem: "detection",
			Name:      "runs_total",
			Help:      "Total number of detection runs",
		},
		[]string{"source", "verdict"},
	)

	detectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "anomalyd",
			Subsystem: "detection",
			Name:      "duration_seconds",
			Help:      "Duration of one model fit and score pass in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	pointsScoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "anomalyd",
			Subsystem: "detection",
			Name:      "points_scored_total",
			Help:      "Total number of series points scored",
		},
	)

	// Monitor metrics
	monitorQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anomalyd",
			Subsystem: "monitor",
			Name:      "queries_total",
			Help:      "Total number of monitor query executions",
		},
		[]string{"query", "status"},
	)

	monitorQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "anomalyd",
			Subsystem: "monitor",
			Name:      "query_duration_seconds",
			Help:      "Duration of one monitor query plus detection in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"query"},
	)

	// Retention metrics
	runsArchivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "anomalyd",
			Subsystem: "retention",
			Name:      "runs_archived_total",
			Help:      "Total number of detection runs archived to object storage",
		},
	)

	runsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "anomalyd",
			Subsystem: "retention",
			Name:      "runs_pruned_total",
			Help:      "Total number of detection runs deleted by retention",
		},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "anomalyd",
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

		// Get route pattern from chi
		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
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

// RecordDetection records one completed detection run
func RecordDetection(source string, anomalous bool, points int, duration time.Duration) {
	verdict := "normal"
	if anomalous {
		verdict = "anomalous"
	}
	detectionsTotal.WithLabelValues(source, verdict).Inc()
	detectionDuration.Observe(duration.Seconds())
	pointsScoredTotal.Add(float64(points))
}

// RecordMonitorQuery records one monitor query execution
func RecordMonitorQuery(query, status string, duration time.Duration) {
	monitorQueriesTotal.WithLabelValues(query, status).Inc()
	monitorQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
}

// RecordRunsArchived increments the archived runs counter
func RecordRunsArchived(count int) {
	runsArchivedTotal.Add(float64(count))
}

// RecordRunsPruned increments the pruned runs counter
func RecordRunsPruned(count int) {
	runsPrunedTotal.Add(float64(count))
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
