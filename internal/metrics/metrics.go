package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filevault_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filevault_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	fileOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filevault_file_operations_total",
			Help: "File operations by kind and result.",
		},
		[]string{"operation", "result"},
	)

	cleanups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filevault_consistency_cleanups_total",
			Help: "Best-effort consistency repairs (orphan blobs, dangling records) by kind and result.",
		},
		[]string{"kind", "result"},
	)

	initOnce sync.Once
)

// InitMetrics registers collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, fileOperations, cleanups)
	})
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	InitMetrics()
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveOperation counts one file operation. A nil err is recorded as success.
func ObserveOperation(operation string, err error) {
	fileOperations.WithLabelValues(operation, result(err)).Inc()
}

// ObserveCleanup counts one consistency repair attempt.
func ObserveCleanup(kind string, err error) {
	cleanups.WithLabelValues(kind, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
