package main

import (
	"database/sql"
	"net/http"
	"time"

	"clinic-platform/internal/httpapi"
	"clinic-platform/internal/rbac"
	"clinic-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
// apiLimit applies to /api/v1 only.
func registerRoutes(r *gin.Engine, h *httpapi.Handlers, g *rbac.Guard, reg *prometheus.Registry, db *sql.DB, apiLimit gin.HandlerFunc) error {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	return h.Register(r, g, apiLimit)
}
