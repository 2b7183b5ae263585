package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_registrations_total",
			Help: "Total number of successful registrations",
		},
	)

	// LoginsTotal counts login attempts by result (success, invalid, error).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_logins_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	MessagesPostedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_posted_total",
			Help: "Total number of messages posted",
		},
	)

	// AuthFailuresTotal counts rejected Authorization headers by reason.
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_auth_failures_total",
			Help: "Total number of token authentication failures by reason",
		},
		[]string{"reason"},
	)

	// UsersStored and MessagesStored are refreshed from the database by the scheduler.
	UsersStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_users_stored",
			Help: "Number of user accounts in the database",
		},
	)

	MessagesStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_messages_stored",
			Help: "Number of messages in the database",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration, RequestTotal,
			RegistrationsTotal, LoginsTotal, MessagesPostedTotal, AuthFailuresTotal,
			UsersStored, MessagesStored,
		)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func IncRegistrations() {
	RegistrationsTotal.Inc()
}

// IncLogins increments the login counter for result (success, invalid, error).
func IncLogins(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

func IncMessagesPosted() {
	MessagesPostedTotal.Inc()
}

// IncAuthFailures increments the auth failure counter for reason.
func IncAuthFailures(reason string) {
	AuthFailuresTotal.WithLabelValues(reason).Inc()
}

// SetStoreSizes publishes the current user and message counts.
func SetStoreSizes(users, messages int) {
	UsersStored.Set(float64(users))
	MessagesStored.Set(float64(messages))
}
