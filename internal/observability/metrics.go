// Package observability holds the Prometheus collectors exported on /metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "exercise_tracker"

var (
	usersCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "users",
		Name:      "created_total",
		Help:      "Number of users created.",
	})

	exercisesLoggedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "exercises",
		Name:      "logged_total",
		Help:      "Number of exercises attached to users.",
	})

	lastExerciseGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "exercises",
		Name:      "last_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recently logged exercise.",
	})

	logEntriesHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "logs",
		Name:      "entries_returned",
		Help:      "Number of entries returned per log query after filtering.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	eventsPublishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Number of events written to Kafka, labeled by topic.",
	}, []string{"topic"})

	eventsFailedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "failed_total",
		Help:      "Number of events that could not be written to Kafka, labeled by topic.",
	}, []string{"topic"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method, route pattern and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		usersCreatedCounter,
		exercisesLoggedCounter,
		lastExerciseGauge,
		logEntriesHistogram,
		eventsPublishedCounter,
		eventsFailedCounter,
		httpDuration,
	)
}

// RecordUserCreated counts a stored user.
func RecordUserCreated() {
	usersCreatedCounter.Inc()
}

// RecordExerciseLogged counts a stored exercise and moves the watermark gauge.
func RecordExerciseLogged(ts time.Time) {
	exercisesLoggedCounter.Inc()
	if ts.IsZero() {
		return
	}
	lastExerciseGauge.Set(float64(ts.Unix()))
}

// RecordLogQuery observes how many entries a log query returned.
func RecordLogQuery(count int) {
	logEntriesHistogram.Observe(float64(count))
}

// RecordEventPublished counts a delivered event.
func RecordEventPublished(topic string) {
	eventsPublishedCounter.WithLabelValues(topic).Inc()
}

// RecordEventFailed counts an event that could not be delivered.
func RecordEventFailed(topic string) {
	eventsFailedCounter.WithLabelValues(topic).Inc()
}

// ObserveHTTPRequest records the latency of a served request.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
