package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glimpse-social/backend/internal/metrics"
)

// Metrics records request counts and latency for Prometheus. Uses the
// route template (e.g. /api/posts/:id) as the path label so cardinality
// stays bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		m := metrics.Get()
		if m == nil {
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
