package httpapi

import (
	"context"

	"clinic-platform/internal/audit"
	"clinic-platform/internal/auth"
	"clinic-platform/internal/branches"
	"clinic-platform/internal/dashboard"
	"clinic-platform/internal/invoices"
	"clinic-platform/internal/rbac"
	"clinic-platform/internal/ratelimit"
	"clinic-platform/internal/users"
)

// AuditRecorder accepts events for asynchronous delivery.
type AuditRecorder interface {
	Record(ctx context.Context, e audit.Event)
}

// Handlers groups HTTP handlers for dependency injection. Keep them thin:
// bind input, apply scope checks the route gate cannot express, call the
// service, record the audit event, respond.
type Handlers struct {
	Sessions     *auth.Sessions
	Users        *users.Service
	Branches     *branches.Service
	Invoices     *invoices.Service
	Dashboard    *dashboard.Service
	AuditLog     *audit.Service
	Recorder     AuditRecorder
	LoginLimiter ratelimit.LoginLimiter
	Policy       rbac.Policy
}

// can checks a condition-scoped grant for the caller's role.
func (h *Handlers) can(p auth.Principal, resource, action string, conds ...string) bool {
	return h.Policy.CanAccess(p.Role, resource, action, conds...)
}
