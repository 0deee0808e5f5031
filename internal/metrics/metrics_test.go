package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.AuthzDenied("forbidden")
	m.ErrorClassified("Internal")
	m.Audit(AuditDropped)
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Audit(AuditRecorded)
	m.Audit(AuditRecorded)
	m.AuthzDenied("forbidden")

	if got := testutil.ToFloat64(m.auditEvents.WithLabelValues(AuditRecorded)); got != 2 {
		t.Fatalf("expected 2 recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.authzDenied.WithLabelValues("forbidden")); got != 1 {
		t.Fatalf("expected 1 denial, got %v", got)
	}
}

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/items/:id", "204")); got != 2 {
		t.Fatalf("expected 2 requests on the route pattern, got %v", got)
	}
}
