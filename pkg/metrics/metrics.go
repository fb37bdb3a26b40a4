// Package metrics provides Prometheus instrumentation.
//
// Wire it up once when building the HTTP kernel:
//
//	r.Use(metrics.Middleware())
//	r.HandleFunc("/metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration tracks how long each HTTP request takes,
	// broken down by method, route path, and status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "licorgest",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts all HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "licorgest",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestInFlight tracks how many requests are currently being served.
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "licorgest",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	// CheckoutsTotal counts checkout submissions by outcome.
	CheckoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "licorgest",
			Subsystem: "checkout",
			Name:      "submissions_total",
			Help:      "Total checkout submissions.",
		},
		[]string{"status"}, // "committed" | "rejected" | "failed"
	)

	// CheckoutDuration tracks end-to-end checkout latency (purchase,
	// line items, stock patches, catalog re-fetch).
	CheckoutDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "licorgest",
		Subsystem: "checkout",
		Name:      "duration_seconds",
		Help:      "Duration of checkout sequences in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	// CatalogRefreshTotal counts catalog loads against the inventory API.
	CatalogRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "licorgest",
			Subsystem: "catalog",
			Name:      "refresh_total",
			Help:      "Total catalog refreshes.",
		},
		[]string{"status"}, // "ok" | "error"
	)

	// APICallDuration tracks latency of outgoing inventory API calls.
	APICallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "licorgest",
			Subsystem: "api",
			Name:      "call_duration_seconds",
			Help:      "Duration of remote inventory API calls in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// DefaultRegistry is the Prometheus registry used by the POS.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		CheckoutsTotal,
		CheckoutDuration,
		CatalogRefreshTotal,
		APICallDuration,
	)
}

// Handler returns the /metrics scrape endpoint.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
	return h.ServeHTTP
}

// Middleware instruments every request with duration/count/in-flight metrics.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			status := strconv.Itoa(rw.status)
			RequestDuration.WithLabelValues(r.Method, r.URL.Path, status).
				Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
