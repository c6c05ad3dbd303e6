// Package metrics provides Prometheus instrumentation for the mock API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts requests by method, route and status.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration tracks handler latency by method and route.
	RequestDuration *prometheus.HistogramVec

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal *prometheus.CounterVec

	// SessionRedirects counts countdowns that reached zero.
	SessionRedirects prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mockfolio_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mockfolio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		}, []string{"method", "route"}),
		LoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mockfolio_logins_total",
			Help: "Mock login attempts by outcome",
		}, []string{"outcome"}),
		SessionRedirects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mockfolio_session_redirects_total",
			Help: "Session-expiry countdowns that completed with a redirect",
		}),
	}
	m.registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.LoginsTotal, m.SessionRedirects)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Middleware records request count and latency. The route label is the
// matched pattern so ticker paths do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
