package rbac

import (
	"context"
	"net/http"
	"testing"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/auth"
)

type fakeResolver struct {
	principals map[string]auth.Principal
	calls      int
}

func (f *fakeResolver) Resolve(_ context.Context, header string) (auth.Principal, error) {
	f.calls++
	if header == "" {
		return auth.Principal{}, apperr.Unauthorized(auth.MsgTokenRequired)
	}
	p, ok := f.principals[header]
	if !ok {
		return auth.Principal{}, apperr.Unauthorized(auth.MsgTokenInvalid)
	}
	if !p.IsActive {
		return auth.Principal{}, apperr.Unauthorized(auth.MsgUserDeactivated)
	}
	return p, nil
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{principals: map[string]auth.Principal{
		"Bearer admin":  {UserID: "a", Role: RoleAdmin, IsActive: true},
		"Bearer doctor": {UserID: "d", Role: RoleDoctor, IsActive: true},
	}}
}

func expectStatus(t *testing.T, err error, status int, msg string) {
	t.Helper()
	ae, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected *apperr.Error, got %v", err)
	}
	if ae.Status != status || ae.Message != msg {
		t.Fatalf("expected %d %q, got %d %q", status, msg, ae.Status, ae.Message)
	}
}

func adminOnlyChain(r PrincipalResolver) Chain {
	policy := DefaultPolicy()
	return Chain{
		Authenticate(r),
		RequireActive(),
		RequireRoles(policy, RoleAdmin),
		RequirePermission(policy, P(ResourceUsers, ActionCreate)),
	}
}

func TestChain_StateMachine(t *testing.T) {
	r := newFakeResolver()
	ch := adminOnlyChain(r)

	err := ch.Evaluate(context.Background(), &Subject{})
	expectStatus(t, err, http.StatusUnauthorized, auth.MsgTokenRequired)

	err = ch.Evaluate(context.Background(), &Subject{Authorization: "Bearer doctor"})
	expectStatus(t, err, http.StatusForbidden, MsgInsufficientPermission)

	s := &Subject{Authorization: "Bearer admin"}
	if err := ch.Evaluate(context.Background(), s); err != nil {
		t.Fatalf("admin should be authorized: %v", err)
	}
	if s.Principal == nil || s.Principal.UserID != "a" {
		t.Fatalf("principal should be attached: %+v", s.Principal)
	}
}

func TestChain_StopsAtFirstFailure(t *testing.T) {
	reached := false
	ch := Chain{
		func(context.Context, *Subject) error { return apperr.Unauthorized("stop") },
		func(context.Context, *Subject) error { reached = true; return nil },
	}
	if err := ch.Evaluate(context.Background(), &Subject{}); err == nil {
		t.Fatalf("expected failure")
	}
	if reached {
		t.Fatalf("gates after a failure must not run")
	}
}

func TestRequireActive(t *testing.T) {
	g := RequireActive()
	expectStatus(t, g(context.Background(), &Subject{}), http.StatusUnauthorized, MsgAuthenticationRequired)
	expectStatus(t, g(context.Background(), &Subject{Principal: &auth.Principal{UserID: "u"}}), http.StatusUnauthorized, auth.MsgUserDeactivated)
	if err := g(context.Background(), &Subject{Principal: &auth.Principal{UserID: "u", IsActive: true}}); err != nil {
		t.Fatalf("active principal should pass: %v", err)
	}
}

func TestRequirePermission_ConditionScoped(t *testing.T) {
	policy := DefaultPolicy()
	doctor := &auth.Principal{UserID: "d", Role: RoleDoctor, IsActive: true}

	if err := RequirePermission(policy, P(ResourceUsers, ActionRead))(context.Background(), &Subject{Principal: doctor}); err != nil {
		t.Fatalf("base read should pass: %v", err)
	}
	err := RequirePermission(policy, P(ResourceUsers, ActionRead, CondAll))(context.Background(), &Subject{Principal: doctor})
	expectStatus(t, err, http.StatusForbidden, MsgInsufficientPermission)

	if err := RequireAnyPermission(policy, P(ResourceUsers, ActionRead, CondAll), P(ResourceBranches, ActionRead))(context.Background(), &Subject{Principal: doctor}); err != nil {
		t.Fatalf("any should pass: %v", err)
	}
}

func TestOptionalAuthenticate_SwallowsFailures(t *testing.T) {
	r := newFakeResolver()
	g := OptionalAuthenticate(r)

	s := &Subject{Authorization: "Bearer bogus"}
	if err := g(context.Background(), s); err != nil {
		t.Fatalf("optional auth must not fail: %v", err)
	}
	if s.Principal != nil {
		t.Fatalf("failed resolution must leave the request anonymous")
	}

	s = &Subject{Authorization: "Bearer doctor"}
	if err := g(context.Background(), s); err != nil || s.Principal == nil {
		t.Fatalf("expected principal for valid token, err=%v", err)
	}
}

func TestRequireRoles_PanicsOnUnknownRole(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for role without policy entry")
		}
	}()
	RequireRoles(DefaultPolicy(), "JANITOR")
}
