package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/migestion/migestion/internal/common/config"
)

// Metrics holds the Prometheus registry and the collectors exposed by the
// auth service.
type Metrics struct {
	registry *prometheus.Registry

	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec

	authAttempts *prometheus.CounterVec
	tokensIssued prometheus.Counter
}

// New creates a metrics registry with process, Go, HTTP and auth collectors.
func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	if ns == "" {
		ns = "migestion"
	}
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	authAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "auth_attempts_total"}, []string{"operation", "outcome"})
	tokensIssued := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "tokens_issued_total"})
	r.MustRegister(authAttempts, tokensIssued)

	return &Metrics{
		registry:     r,
		httpReqCnt:   httpReqCnt,
		httpDur:      httpDur,
		httpInfl:     httpInfl,
		authAttempts: authAttempts,
		tokensIssued: tokensIssued,
	}
}

// AuthAttempt records an auth operation outcome ("success" or "failure").
func (m *Metrics) AuthAttempt(operation string, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.authAttempts.WithLabelValues(operation, outcome).Inc()
}

// TokenPairIssued counts one issued access/refresh pair.
func (m *Metrics) TokenPairIssued() {
	if m == nil {
		return
	}
	m.tokensIssued.Inc()
}

// Middleware returns a gin middleware recording request counts, durations
// and in-flight gauges per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		start := time.Now()
		m.httpInfl.WithLabelValues(route).Inc()

		c.Next()

		m.httpInfl.WithLabelValues(route).Dec()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the /metrics scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
