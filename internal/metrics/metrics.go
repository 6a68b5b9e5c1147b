package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vibe",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vibe",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 16), // 5ms to ~160s
		},
		[]string{"method", "path"},
	)

	ideaBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "store",
			Name:      "idea_batches_total",
			Help:      "Idea generation batches by outcome.",
		},
		[]string{"outcome"},
	)

	thumbnails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "store",
			Name:      "thumbnails_total",
			Help:      "Thumbnail renders by status.",
		},
		[]string{"status"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Key/value cache lookups by kind and result.",
		},
		[]string{"kind", "result"},
	)

	synthesisOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibe",
			Subsystem: "synth",
			Name:      "sessions_total",
			Help:      "App synthesis sessions by terminal state.",
		},
		[]string{"state"},
	)

	synthesisPolls = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vibe",
			Subsystem: "synth",
			Name:      "poll_attempts",
			Help:      "Poll attempts needed before a session reached a terminal state.",
			Buckets:   []float64{1, 2, 5, 10, 20, 45, 90},
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ideaBatches,
		thumbnails,
		cacheLookups,
		synthesisOutcomes,
		synthesisPolls,
	)
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InFlight tracks a request for the in-flight gauge; call the returned func when done
func InFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordHTTP records one served request
func RecordHTTP(method, path string, status int, duration time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordIdeaBatch records the outcome of one idea generation batch
func RecordIdeaBatch(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	ideaBatches.WithLabelValues(outcome).Inc()
}

// RecordThumbnail records a finished thumbnail render
func RecordThumbnail(status string) {
	thumbnails.WithLabelValues(status).Inc()
}

// RecordCacheLookup records a cache hit or miss for a key kind
func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordSynthesis records a terminal synthesis state and the polls it took
func RecordSynthesis(state string, attempts int) {
	synthesisOutcomes.WithLabelValues(state).Inc()
	synthesisPolls.Observe(float64(attempts))
}
