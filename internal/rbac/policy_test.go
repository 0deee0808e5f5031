package rbac

import "testing"

func TestCanAccess_ExactMatchOnly(t *testing.T) {
	p := NewPolicy(map[string][]Permission{
		"R": {P("users", "read")},
	})
	if !p.CanAccess("R", "users", "read") {
		t.Fatalf("expected exact grant to pass")
	}
	for _, tc := range [][2]string{{"users", "update"}, {"user", "read"}, {"*", "read"}, {"users", "*"}} {
		if p.CanAccess("R", tc[0], tc[1]) {
			t.Fatalf("expected %s:%s to be denied", tc[0], tc[1])
		}
	}
}

func TestCanAccess_Conditions(t *testing.T) {
	p := NewPolicy(map[string][]Permission{
		"SCOPED": {P("users", "read", "own")},
		"WIDE":   {P("users", "read", "all", "own")},
		"FREE":   {P("users", "read")},
	})

	if !p.CanAccess("SCOPED", "users", "read") {
		t.Fatalf("base check should pass for a condition-scoped grant")
	}
	if p.CanAccess("SCOPED", "users", "read", "all") {
		t.Fatalf("requesting 'all' must require the condition to be granted")
	}
	if !p.CanAccess("WIDE", "users", "read", "all", "own") {
		t.Fatalf("all requested conditions are granted")
	}
	if p.CanAccess("WIDE", "users", "read", "all", "stats") {
		t.Fatalf("conditions are an AND filter")
	}
	if !p.CanAccess("FREE", "users", "read", "all") {
		t.Fatalf("a grant without conditions is unrestricted")
	}
}

func TestCanAccess_DenyByDefault(t *testing.T) {
	p := NewPolicy(map[string][]Permission{"EMPTY": {}})
	for _, role := range []string{"EMPTY", "UNKNOWN", ""} {
		if p.CanAccess(role, "users", "read") {
			t.Fatalf("role %q must be denied", role)
		}
		if p.Any(role, P("users", "read"), P("branches", "read")) {
			t.Fatalf("role %q must be denied by Any", role)
		}
	}
	if err := p.Require("EMPTY"); err != nil {
		t.Fatalf("empty entry is still an entry: %v", err)
	}
	if err := p.Require("UNKNOWN"); err == nil {
		t.Fatalf("expected error for role without entry")
	}
}

func TestAnyAll(t *testing.T) {
	p := NewPolicy(map[string][]Permission{
		"R": {P("invoices", "read", "stats"), P("branches", "read")},
	})
	if !p.Any("R", P("users", "read"), P("branches", "read")) {
		t.Fatalf("Any should pass with one granted permission")
	}
	if p.All("R", P("users", "read"), P("branches", "read")) {
		t.Fatalf("All should fail when one permission is missing")
	}
	if !p.All("R", P("invoices", "read", "stats"), P("branches", "read")) {
		t.Fatalf("All should pass when every permission is granted")
	}
	if p.All("R") {
		t.Fatalf("All with no permissions grants nothing")
	}
}

func TestNewPolicy_CopiesTable(t *testing.T) {
	table := map[string][]Permission{"R": {P("users", "read", "own")}}
	p := NewPolicy(table)

	table["R"][0].Conditions[0] = "all"
	table["R"] = append(table["R"], P("users", "delete"))

	if p.CanAccess("R", "users", "read", "all") || p.CanAccess("R", "users", "delete") {
		t.Fatalf("policy must not observe mutations of its source table")
	}
}

func TestDefaultPolicy_CoversEveryRole(t *testing.T) {
	p := DefaultPolicy()
	if err := p.Require(AllRoles()...); err != nil {
		t.Fatalf("default policy: %v", err)
	}
	if !p.CanAccess(RoleAdmin, ResourceUsers, ActionRead, CondAll) {
		t.Fatalf("admin should list all users")
	}
	if p.CanAccess(RoleDoctor, ResourceUsers, ActionRead, CondAll) {
		t.Fatalf("doctor must not list all users")
	}
	if !p.CanAccess(RoleAccountant, ResourceInvoices, ActionUpdate, CondPay) {
		t.Fatalf("accountant should pay invoices")
	}
	if p.CanAccess(RoleDoctor, ResourceInvoices, ActionUpdate, CondPay) {
		t.Fatalf("doctor must not pay invoices")
	}
}
