package httpapi

import "github.com/gin-gonic/gin"

func (h *Handlers) DashboardStats(c *gin.Context) {
	st, err := h.Dashboard.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Dashboard statistics retrieved", st)
}
