package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current Number of HTTP requests being processed.",
		},
	)

	snapshotOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shared_cart_snapshot_operations_total",
			Help: "Item snapshot cache operations by kind and outcome.",
		},
		[]string{"op", "outcome"},
	)

	itemRestorations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shared_cart_item_restorations_total",
			Help: "Completed carts reported without items, by whether a snapshot could be substituted.",
		},
		[]string{"outcome"},
	)

	checkoutOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shared_cart_checkouts_total",
			Help: "Checkout attempts by final state and snapshot source.",
		},
		[]string{"state", "source"},
	)

	invitationsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shared_cart_invitations_resolved_total",
			Help: "Pending invitations removed by reconciliation, by match kind.",
		},
		[]string{"match"},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}
}

func SnapshotOperation(op, outcome string) {
	snapshotOperations.WithLabelValues(op, outcome).Inc()
}

func ItemRestoration(outcome string) {
	itemRestorations.WithLabelValues(outcome).Inc()
}

func CheckoutOutcome(state, source string) {
	checkoutOutcomes.WithLabelValues(state, source).Inc()
}

func InvitationResolved(match string) {
	invitationsResolved.WithLabelValues(match).Inc()
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := newResponseWriter(w)

		defer func() {

			// r.Pattern is set by ServeMux once routing completes; keeps label cardinality bounded.
			pathPattern := r.Pattern
			if pathPattern == "" {
				pathPattern = "unmatched"
			}

			httpRequestsTotal.WithLabelValues(strconv.Itoa(rw.statusCode), r.Method, pathPattern).Inc()
			httpRequestsDuration.WithLabelValues(r.Method, pathPattern).Observe(time.Since(start).Seconds())
			httpRequestsInFlight.Dec()

		}()

		next.ServeHTTP(rw, r)

	})
}

// http.Handler for the Prometheus /metrics endpoint
func Handler() http.Handler {

	return promhttp.Handler()
}
