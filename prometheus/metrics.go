package prometheus

import (
	"sync"
	"time"

	"rent-admin/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Gateway call metrics
	GatewayCallsTotal   *prometheus.CounterVec
	GatewayCallDuration *prometheus.HistogramVec
	MalformedRecords    *prometheus.CounterVec

	// Session metrics
	SessionsActiveGauge prometheus.Gauge
	SessionExpiredTotal prometheus.Counter

	// Screen state metrics
	NotificationsTotal   *prometheus.CounterVec
	StaleResponsesTotal  *prometheus.CounterVec
	HighlightRollbacks   prometheus.Counter
	ImageUploadsTotal    *prometheus.CounterVec
	BookingsSkippedTotal prometheus.Counter

	initOnce sync.Once
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	initOnce.Do(func() {
		register(promauto.With(prometheus.DefaultRegisterer), config.Metrics.Prefix)
	})
}

func init() {
	// Unregistered collectors so packages can record before InitMetrics runs (tests, CLI).
	register(promauto.With(nil), "rent_admin")
}

func register(factory promauto.Factory, prefix string) {
	HttpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	GatewayCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_gateway_calls_total",
			Help: "Total number of calls to the rental API",
		},
		[]string{"operation", "outcome"},
	)

	GatewayCallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_gateway_call_duration_seconds",
			Help:    "Duration of rental API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	MalformedRecords = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_gateway_malformed_records_total",
			Help: "Total number of list records dropped because they could not be decoded",
		},
		[]string{"operation"},
	)

	SessionsActiveGauge = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_sessions_active",
			Help: "Number of admin sessions with an open workspace",
		},
	)

	SessionExpiredTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_session_expired_total",
			Help: "Total number of sessions cleared after a 401 or an expired token",
		},
	)

	NotificationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_notifications_total",
			Help: "Total number of user notifications raised",
		},
		[]string{"kind"},
	)

	StaleResponsesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stale_responses_total",
			Help: "Total number of superseded responses discarded",
		},
		[]string{"source"},
	)

	HighlightRollbacks = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_highlight_rollbacks_total",
			Help: "Total number of highlight reorders rolled back after a failed save",
		},
	)

	ImageUploadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_image_uploads_total",
			Help: "Total number of image uploads by result",
		},
		[]string{"result"},
	)

	BookingsSkippedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_calendar_bookings_skipped_total",
			Help: "Total number of bookings left off the calendar for missing dates",
		},
	)
}

// TrackGatewayCall returns a function that records the duration and outcome of a gateway call
func TrackGatewayCall(operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		GatewayCallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		GatewayCallsTotal.WithLabelValues(operation, outcome).Inc()
	}
}

// RecordMalformedRecords counts list records dropped by a gateway call
func RecordMalformedRecords(operation string, n int) {
	MalformedRecords.WithLabelValues(operation).Add(float64(n))
}

// RecordNotification increments the counter for raised notifications
func RecordNotification(kind string) {
	NotificationsTotal.WithLabelValues(kind).Inc()
}

// RecordStaleResponse increments the counter for discarded responses
func RecordStaleResponse(source string) {
	StaleResponsesTotal.WithLabelValues(source).Inc()
}

// RecordImageUpload increments the counter for image uploads
func RecordImageUpload(result string) {
	ImageUploadsTotal.WithLabelValues(result).Inc()
}
