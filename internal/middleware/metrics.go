package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arrendando_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arrendando_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpStatusCategory = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arrendando_http_status_category_total",
		Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
	}, []string{"category"})
)

// Metrics records request count and latency per route template
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Label by route template; unmatched URLs share one label
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if quietPaths[path] {
			return
		}

		status := c.Writer.Status()
		labels := []string{c.Request.Method, path, strconv.Itoa(status)}
		httpRequests.WithLabelValues(labels...).Inc()
		httpDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		httpStatusCategory.WithLabelValues(statusCategory(status)).Inc()
	}
}

func statusCategory(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
