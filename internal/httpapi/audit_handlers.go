package httpapi

import (
	"clinic-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

type limitQuery struct {
	Limit int `form:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
}

func (h *Handlers) limit(c *gin.Context) (int, error) {
	var q limitQuery
	if err := bindQuery(c, &q); err != nil {
		return 0, err
	}
	return q.Limit, nil
}

func (h *Handlers) RecentAudit(c *gin.Context) {
	n, err := h.limit(c)
	if err != nil {
		fail(c, err)
		return
	}
	rows, err := h.AuditLog.Recent(c.Request.Context(), n)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Audit events retrieved", rows)
}

func (h *Handlers) AuditStats(c *gin.Context) {
	st, err := h.AuditLog.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Audit statistics retrieved", st)
}

func (h *Handlers) ResourceHistory(c *gin.Context) {
	n, err := h.limit(c)
	if err != nil {
		fail(c, err)
		return
	}
	rows, err := h.AuditLog.History(c.Request.Context(), c.Param("resource"), c.Param("id"), n)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Resource history retrieved", rows)
}

// UserActivity serves the caller's own trail with audit:read[own]; other
// users' trails need audit:read[all].
func (h *Handlers) UserActivity(c *gin.Context) {
	p, _ := principal(c)
	id := c.Param("id")
	cond := rbac.CondAll
	if id == p.UserID {
		cond = rbac.CondOwn
	}
	if !h.can(p, rbac.ResourceAudit, rbac.ActionRead, cond) {
		fail(c, forbidden())
		return
	}
	n, err := h.limit(c)
	if err != nil {
		fail(c, err)
		return
	}
	rows, err := h.AuditLog.Activity(c.Request.Context(), id, n)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "User activity retrieved", rows)
}
