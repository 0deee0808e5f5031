package rbac

import (
	"fmt"
	"slices"
)

// Permission is a (resource, action, optional conditions) grant.
type Permission struct {
	Resource   string   `json:"resource"`
	Action     string   `json:"action"`
	Conditions []string `json:"conditions,omitempty"`
}

// P is shorthand for building permissions in policy tables and route declarations.
func P(resource, action string, conditions ...string) Permission {
	return Permission{Resource: resource, Action: action, Conditions: conditions}
}

// Policy is an immutable role -> permission-set table. Build it once at start
// and share it; it is safe for concurrent reads.
type Policy struct {
	grants map[string][]Permission
}

// NewPolicy copies table so later mutation of the argument cannot leak in.
func NewPolicy(table map[string][]Permission) Policy {
	grants := make(map[string][]Permission, len(table))
	for role, perms := range table {
		cp := make([]Permission, len(perms))
		for i, p := range perms {
			cp[i] = Permission{Resource: p.Resource, Action: p.Action, Conditions: slices.Clone(p.Conditions)}
		}
		grants[role] = cp
	}
	return Policy{grants: grants}
}

// HasRole reports whether role has an entry, even an empty one.
func (p Policy) HasRole(role string) bool {
	_, ok := p.grants[role]
	return ok
}

// Require fails when any role lacks a table entry. Routes call it at
// registration so an unknown role can never fall through to a default.
func (p Policy) Require(roles ...string) error {
	for _, r := range roles {
		if !p.HasRole(r) {
			return fmt.Errorf("rbac: role %q has no policy entry", r)
		}
	}
	return nil
}

// Permissions returns a copy of the grants held by role.
func (p Policy) Permissions(role string) []Permission {
	return slices.Clone(p.grants[role])
}

// CanAccess reports whether role holds a grant with exactly this resource and
// action. Requested conditions must all appear in the grant's condition set;
// a grant without conditions is unrestricted. Unknown roles are denied.
func (p Policy) CanAccess(role, resource, action string, conditions ...string) bool {
	for _, g := range p.grants[role] {
		if g.Resource != resource || g.Action != action {
			continue
		}
		if len(conditions) == 0 || len(g.Conditions) == 0 {
			return true
		}
		if containsAll(g.Conditions, conditions) {
			return true
		}
	}
	return false
}

// Allows is CanAccess for a Permission value.
func (p Policy) Allows(role string, perm Permission) bool {
	return p.CanAccess(role, perm.Resource, perm.Action, perm.Conditions...)
}

// Any is true when at least one permission passes.
func (p Policy) Any(role string, perms ...Permission) bool {
	for _, perm := range perms {
		if p.Allows(role, perm) {
			return true
		}
	}
	return false
}

// All is true only when every permission passes. An empty list grants nothing.
func (p Policy) All(role string, perms ...Permission) bool {
	if len(perms) == 0 {
		return false
	}
	for _, perm := range perms {
		if !p.Allows(role, perm) {
			return false
		}
	}
	return true
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

// DefaultPolicy is the clinic's static policy table.
func DefaultPolicy() Policy {
	crud := func(resource string) []Permission {
		return []Permission{
			P(resource, ActionCreate),
			P(resource, ActionRead),
			P(resource, ActionUpdate),
			P(resource, ActionDelete),
		}
	}

	admin := append(crud(ResourceUsers), crud(ResourceBranches)...)
	admin = append(admin, crud(ResourceInvoices)...)
	admin = append(admin, P(ResourceAudit, ActionRead), P(ResourceDashboard, ActionRead))

	return NewPolicy(map[string][]Permission{
		RoleAdmin: admin,
		RoleManager: {
			P(ResourceUsers, ActionRead, CondAll, CondOwn),
			P(ResourceUsers, ActionUpdate, CondOwn),
			P(ResourceBranches, ActionRead),
			P(ResourceBranches, ActionUpdate),
			P(ResourceInvoices, ActionCreate),
			P(ResourceInvoices, ActionRead, CondAll, CondOwn, CondStats),
			P(ResourceInvoices, ActionUpdate, CondPay),
			P(ResourceAudit, ActionRead, CondOwn, CondStats),
			P(ResourceDashboard, ActionRead, CondStats),
		},
		RoleDoctor: {
			P(ResourceUsers, ActionRead, CondOwn),
			P(ResourceUsers, ActionUpdate, CondOwn),
			P(ResourceBranches, ActionRead),
			P(ResourceInvoices, ActionCreate),
			P(ResourceInvoices, ActionRead, CondOwn),
			P(ResourceAudit, ActionRead, CondOwn),
		},
		RoleReceptionist: {
			P(ResourceUsers, ActionRead, CondOwn),
			P(ResourceUsers, ActionUpdate, CondOwn),
			P(ResourceBranches, ActionRead),
			P(ResourceInvoices, ActionCreate),
			P(ResourceInvoices, ActionRead, CondOwn),
			P(ResourceInvoices, ActionUpdate, CondPay),
			P(ResourceAudit, ActionRead, CondOwn),
		},
		RoleAccountant: {
			P(ResourceUsers, ActionRead, CondOwn),
			P(ResourceBranches, ActionRead),
			P(ResourceInvoices, ActionRead, CondAll, CondOwn, CondStats),
			P(ResourceInvoices, ActionUpdate, CondPay),
			P(ResourceAudit, ActionRead, CondOwn),
			P(ResourceDashboard, ActionRead, CondStats),
		},
	})
}
