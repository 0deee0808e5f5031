package httpapi

import (
	"clinic-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Register mounts the /api/v1 surface. Every route declares its gate here;
// scope checks that depend on the target row stay in the handlers. mw runs
// ahead of every /api/v1 route and nowhere else.
func (h *Handlers) Register(r gin.IRouter, g *rbac.Guard, mw ...gin.HandlerFunc) error {
	if err := g.Policy().Require(rbac.AllRoles()...); err != nil {
		return err
	}
	h.Policy = g.Policy()

	admin := []string{rbac.RoleAdmin}
	v1 := r.Group("/api/v1", mw...)

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", g.Authenticated(), h.Me)
	}

	usersGroup := v1.Group("/users")
	{
		usersGroup.GET("", g.Allow(rbac.P(rbac.ResourceUsers, rbac.ActionRead, rbac.CondAll)), h.ListUsers)
		usersGroup.POST("", g.Protect(admin, rbac.P(rbac.ResourceUsers, rbac.ActionCreate)), h.CreateUser)
		usersGroup.GET("/:id", g.Allow(rbac.P(rbac.ResourceUsers, rbac.ActionRead)), h.GetUser)
		usersGroup.PATCH("/:id", g.Allow(rbac.P(rbac.ResourceUsers, rbac.ActionUpdate)), h.UpdateUser)
		usersGroup.PATCH("/:id/status", g.Protect(admin, rbac.P(rbac.ResourceUsers, rbac.ActionUpdate, rbac.CondAll)), h.SetUserStatus)
		usersGroup.DELETE("/:id", g.Protect(admin, rbac.P(rbac.ResourceUsers, rbac.ActionDelete)), h.DeleteUser)
	}

	branchesGroup := v1.Group("/branches")
	{
		branchesGroup.GET("", g.Optional(), h.ListBranches)
		branchesGroup.GET("/:id", g.Optional(), h.GetBranch)
		branchesGroup.POST("", g.Allow(rbac.P(rbac.ResourceBranches, rbac.ActionCreate)), h.CreateBranch)
		branchesGroup.PATCH("/:id", g.Allow(rbac.P(rbac.ResourceBranches, rbac.ActionUpdate)), h.UpdateBranch)
		branchesGroup.DELETE("/:id", g.Allow(rbac.P(rbac.ResourceBranches, rbac.ActionDelete)), h.DeleteBranch)
	}

	invoicesGroup := v1.Group("/invoices")
	{
		invoicesGroup.GET("", g.Allow(rbac.P(rbac.ResourceInvoices, rbac.ActionRead)), h.ListInvoices)
		invoicesGroup.POST("", g.Allow(rbac.P(rbac.ResourceInvoices, rbac.ActionCreate)), h.CreateInvoice)
		invoicesGroup.GET("/stats", g.Allow(rbac.P(rbac.ResourceInvoices, rbac.ActionRead, rbac.CondStats)), h.InvoiceStats)
		invoicesGroup.GET("/:id", g.Allow(rbac.P(rbac.ResourceInvoices, rbac.ActionRead)), h.GetInvoice)
		invoicesGroup.POST("/:id/pay", g.Allow(rbac.P(rbac.ResourceInvoices, rbac.ActionUpdate, rbac.CondPay)), h.PayInvoice)
		invoicesGroup.DELETE("/:id", g.Allow(rbac.P(rbac.ResourceInvoices, rbac.ActionDelete)), h.DeleteInvoice)
	}

	auditGroup := v1.Group("/audit")
	{
		auditGroup.GET("/recent", g.Allow(rbac.P(rbac.ResourceAudit, rbac.ActionRead, rbac.CondAll)), h.RecentAudit)
		auditGroup.GET("/stats", g.Allow(rbac.P(rbac.ResourceAudit, rbac.ActionRead, rbac.CondStats)), h.AuditStats)
		auditGroup.GET("/history/:resource/:id", g.Allow(rbac.P(rbac.ResourceAudit, rbac.ActionRead, rbac.CondAll)), h.ResourceHistory)
		auditGroup.GET("/users/:id/activity", g.Allow(rbac.P(rbac.ResourceAudit, rbac.ActionRead)), h.UserActivity)
	}

	v1.GET("/dashboard/stats", g.Allow(rbac.P(rbac.ResourceDashboard, rbac.ActionRead, rbac.CondStats)), h.DashboardStats)
	return nil
}
