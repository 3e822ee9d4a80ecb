package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sql-explainer/pkg/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Logger returns a Gin middleware that logs each request using zap.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// Metrics counts requests per route template and status.
func Metrics(collector metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := collector.StartTimer(metrics.HTTPRequestDuration)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.IncrementCounter(metrics.HTTPRequestsTotal,
			"method", c.Request.Method, "route", route, "status", strconv.Itoa(c.Writer.Status()))
		collector.RecordHistogram(metrics.HTTPRequestDuration, timer.Stop(), "method", c.Request.Method, "route", route)
	}
}
