package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Handler records per-route HTTP metrics
type Handler struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func New(namespace string, reg prometheus.Registerer) *Handler {
	factory := promauto.With(reg)
	return &Handler{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "Total number of HTTP responses with a 4xx or 5xx status",
			},
			[]string{"method", "path", "class"},
		),
	}
}

// Middleware observes every request. Unmatched routes share one path label.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		method := c.Request.Method

		h.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		h.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		if status >= 400 {
			h.errorTotal.WithLabelValues(method, path, strconv.Itoa(status/100)+"xx").Inc()
		}
	}
}
