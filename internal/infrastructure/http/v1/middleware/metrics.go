package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"supplyscope/internal/infrastructure/metrics"
)

// Metrics records request count, latency and in-flight requests. Paths are
// labelled by route pattern so that supplier ids do not explode cardinality.
func Metrics(m *metrics.Metrics, excludePaths ...string) gin.HandlerFunc {
	exclude := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		exclude[p] = true
	}

	return func(c *gin.Context) {
		if exclude[c.Request.URL.Path] {
			c.Next()
			return
		}

		m.IncrementHTTPRequestsInFlight()
		defer m.DecrementHTTPRequestsInFlight()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
