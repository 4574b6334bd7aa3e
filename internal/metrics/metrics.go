package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)
)

func MustRegister() {
	prometheus.MustRegister(RequestsTotal, ReqDuration, InFlight)
}

// Middleware instruments every request by route template (not raw path, to
// keep label cardinality bounded).
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		InFlight.Inc()
		c.Next()
		InFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) { h.ServeHTTP(c.Writer, c.Request) }
}
