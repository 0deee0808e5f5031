package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin        = "ADMIN"
	RoleManager      = "MANAGER"
	RoleDoctor       = "DOCTOR"
	RoleReceptionist = "RECEPTIONIST"
	RoleAccountant   = "ACCOUNTANT"
)

// Resources guarded by the policy table.
const (
	ResourceUsers     = "users"
	ResourceBranches  = "branches"
	ResourceInvoices  = "invoices"
	ResourceAudit     = "audit"
	ResourceDashboard = "dashboard"
)

const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Conditions narrow a grant beyond its resource/action pair.
const (
	CondAll   = "all"
	CondOwn   = "own"
	CondStats = "stats"
	CondPay   = "pay"
)

// AllRoles lists every role the service knows about.
func AllRoles() []string {
	return []string{RoleAdmin, RoleManager, RoleDoctor, RoleReceptionist, RoleAccountant}
}
