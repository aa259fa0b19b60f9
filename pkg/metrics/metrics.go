package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Live delivery metrics
	LiveChannels        prometheus.Gauge
	LiveMessagesSent    prometheus.Counter
	LiveMessagesDropped prometheus.Counter

	// Notification pipeline metrics
	NotificationsCreated    *prometheus.CounterVec
	NotificationsSuppressed *prometheus.CounterVec
	EventHandlerFailures    *prometheus.CounterVec

	// Badge metrics
	BadgesAwarded *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// NewMetrics creates all application metrics and registers them with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LiveChannels: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_channels",
			Help:      "Current number of open live delivery channels",
		}),
		LiveMessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_messages_sent_total",
			Help:      "Total number of frames queued to live channels",
		}),
		LiveMessagesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_messages_dropped_total",
			Help:      "Total number of frames dropped because a channel queue was full",
		}),

		NotificationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Total number of persisted notifications",
		}, []string{"type"}),
		NotificationsSuppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_suppressed_total",
			Help:      "Total number of events that produced no notification",
		}, []string{"reason"}),
		EventHandlerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_handler_failures_total",
			Help:      "Total number of event handler errors and panics",
		}, []string{"event"}),

		BadgesAwarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badges_awarded_total",
			Help:      "Total number of newly awarded badges",
		}, []string{"category"}),

		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}

// Nop returns metrics that are not registered anywhere
func Nop() *Metrics {
	return NewMetrics("", nil)
}

// ObserveDB records the outcome of a database operation
func (m *Metrics) ObserveDB(operation string, err error, seconds float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.DatabaseOperations.WithLabelValues(operation, status).Inc()
	m.DatabaseLatency.WithLabelValues(operation).Observe(seconds)
}
