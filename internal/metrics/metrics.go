// Package metrics owns the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing, which keeps unit tests free of registries.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	authzDenied      *prometheus.CounterVec
	errorsClassified *prometheus.CounterVec
	auditEvents      *prometheus.CounterVec
}

// Audit outcomes.
const (
	AuditRecorded = "recorded"
	AuditFailed   = "failed"
	AuditDropped  = "dropped"
	AuditRetried  = "retried"
)

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinic_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		authzDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_authz_denied_total",
			Help: "Requests stopped by the authorization pipeline.",
		}, []string{"reason"}),
		errorsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_errors_classified_total",
			Help: "Errors classified into response categories.",
		}, []string{"category"}),
		auditEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_audit_events_total",
			Help: "Audit event deliveries by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.authzDenied, m.errorsClassified, m.auditEvents)
	return m
}

func (m *Metrics) AuthzDenied(reason string) {
	if m == nil {
		return
	}
	m.authzDenied.WithLabelValues(reason).Inc()
}

func (m *Metrics) ErrorClassified(category string) {
	if m == nil {
		return
	}
	m.errorsClassified.WithLabelValues(category).Inc()
}

func (m *Metrics) Audit(outcome string) {
	if m == nil {
		return
	}
	m.auditEvents.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency keyed by the route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
