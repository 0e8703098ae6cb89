package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gameforum",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gameforum",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// DegradedFields counts secondary lookups that failed during page
	// aggregation and were replaced by a default value.
	DegradedFields = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gameforum",
		Name:      "aggregation_degraded_fields_total",
		Help:      "Secondary lookups that fell back to a default value.",
	}, []string{"page", "field"})

	// SessionChecks counts session validations by outcome.
	SessionChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gameforum",
		Name:      "session_validations_total",
		Help:      "Session validations by outcome.",
	}, []string{"outcome"})

	// CacheLookups counts category cache lookups by tier and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gameforum",
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by tier and result.",
	}, []string{"tier", "result"})

	// EventsPublished counts domain events handed to the broker.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gameforum",
		Name:      "events_published_total",
		Help:      "Domain events published by type and result.",
	}, []string{"type", "result"})
)

// Middleware records request counts and latency keyed by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
