package rbac

import (
	"context"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/auth"
)

const (
	MsgAuthenticationRequired = "Authentication required"
	MsgInsufficientPermission = "Insufficient permissions"
)

// Subject is the request state a gate chain evaluates. Gates may fill in
// Principal; every other field is read-only.
type Subject struct {
	Authorization string
	Principal     *auth.Principal
}

// Gate either lets the request continue (nil) or terminates it with an error
// that the error boundary turns into the response.
type Gate func(ctx context.Context, s *Subject) error

// Chain runs gates in order and stops at the first failure:
// authenticate -> active -> role allowlist -> permission -> handler.
type Chain []Gate

func (ch Chain) Evaluate(ctx context.Context, s *Subject) error {
	for _, g := range ch {
		if err := g(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// PrincipalResolver is satisfied by *auth.Resolver.
type PrincipalResolver interface {
	Resolve(ctx context.Context, header string) (auth.Principal, error)
}

// Authenticate resolves the bearer token. Any failure is terminal (401).
func Authenticate(r PrincipalResolver) Gate {
	return func(ctx context.Context, s *Subject) error {
		if s.Principal != nil {
			return nil
		}
		p, err := r.Resolve(ctx, s.Authorization)
		if err != nil {
			return err
		}
		s.Principal = &p
		return nil
	}
}

// OptionalAuthenticate runs the same checks but swallows every failure, leaving
// the request anonymous. Never use it in front of state-changing handlers.
func OptionalAuthenticate(r PrincipalResolver) Gate {
	return func(ctx context.Context, s *Subject) error {
		if s.Principal != nil || s.Authorization == "" {
			return nil
		}
		if p, err := r.Resolve(ctx, s.Authorization); err == nil {
			s.Principal = &p
		}
		return nil
	}
}

// RequireActive needs an attached principal whose account is active.
func RequireActive() Gate {
	return func(_ context.Context, s *Subject) error {
		if s.Principal == nil {
			return apperr.Unauthorized(MsgAuthenticationRequired)
		}
		if !s.Principal.IsActive {
			return apperr.Unauthorized(auth.MsgUserDeactivated)
		}
		return nil
	}
}

// RequireRoles restricts a route to an allowlist. It panics at construction
// when a role has no policy entry, so a misspelt role fails at start-up
// instead of silently denying (or allowing) at request time.
func RequireRoles(policy Policy, roles ...string) Gate {
	if err := policy.Require(roles...); err != nil {
		panic(err)
	}
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(_ context.Context, s *Subject) error {
		if s.Principal == nil {
			return apperr.Unauthorized(MsgAuthenticationRequired)
		}
		if _, ok := allowed[s.Principal.Role]; !ok {
			return apperr.Forbidden(MsgInsufficientPermission)
		}
		return nil
	}
}

// RequirePermission evaluates every perm against the policy (all must pass).
func RequirePermission(policy Policy, perms ...Permission) Gate {
	return func(_ context.Context, s *Subject) error {
		if s.Principal == nil {
			return apperr.Unauthorized(MsgAuthenticationRequired)
		}
		if !policy.All(s.Principal.Role, perms...) {
			return apperr.Forbidden(MsgInsufficientPermission)
		}
		return nil
	}
}

// RequireAnyPermission passes when at least one perm is granted.
func RequireAnyPermission(policy Policy, perms ...Permission) Gate {
	return func(_ context.Context, s *Subject) error {
		if s.Principal == nil {
			return apperr.Unauthorized(MsgAuthenticationRequired)
		}
		if !policy.Any(s.Principal.Role, perms...) {
			return apperr.Forbidden(MsgInsufficientPermission)
		}
		return nil
	}
}
