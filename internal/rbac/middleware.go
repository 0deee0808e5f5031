package rbac

import (
	"net/http"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/auth"
	"clinic-platform/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Guard binds the resolver and policy used by route middleware.
type Guard struct {
	resolver PrincipalResolver
	policy   Policy
	metrics  *metrics.Metrics
}

func NewGuard(resolver PrincipalResolver, policy Policy, m *metrics.Metrics) *Guard {
	return &Guard{resolver: resolver, policy: policy, metrics: m}
}

func (g *Guard) Policy() Policy { return g.policy }

// Middleware adapts a chain to gin. Failures are pushed to c.Errors and the
// request is aborted; the error boundary writes the response.
func (g *Guard) Middleware(ch Chain) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := &Subject{Authorization: c.GetHeader(auth.AuthorizationHeader)}
		if p, ok := auth.PrincipalFrom(c.Request.Context()); ok {
			s.Principal = &p
		}

		if err := ch.Evaluate(c.Request.Context(), s); err != nil {
			g.metrics.AuthzDenied(denialReason(err))
			_ = c.Error(err)
			c.Abort()
			return
		}

		if s.Principal != nil {
			c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), *s.Principal))
		}
		c.Next()
	}
}

// Authenticated is the mandatory-auth mode: valid token and active account.
func (g *Guard) Authenticated() gin.HandlerFunc {
	return g.Middleware(Chain{Authenticate(g.resolver), RequireActive()})
}

// Optional is the optional-auth mode; the request proceeds anonymous on any failure.
func (g *Guard) Optional() gin.HandlerFunc {
	return g.Middleware(Chain{OptionalAuthenticate(g.resolver)})
}

// Roles is the role-allowlist mode, evaluated after authentication.
func (g *Guard) Roles(roles ...string) gin.HandlerFunc {
	return g.Middleware(Chain{Authenticate(g.resolver), RequireActive(), RequireRoles(g.policy, roles...)})
}

// Allow requires every permission to be granted to the principal's role.
func (g *Guard) Allow(perms ...Permission) gin.HandlerFunc {
	return g.Middleware(Chain{Authenticate(g.resolver), RequireActive(), RequirePermission(g.policy, perms...)})
}

// Protect runs the full state machine: authenticate, active, allowlist, permission.
func (g *Guard) Protect(roles []string, perms ...Permission) gin.HandlerFunc {
	ch := Chain{Authenticate(g.resolver), RequireActive()}
	if len(roles) > 0 {
		ch = append(ch, RequireRoles(g.policy, roles...))
	}
	if len(perms) > 0 {
		ch = append(ch, RequirePermission(g.policy, perms...))
	}
	return g.Middleware(ch)
}

func denialReason(err error) string {
	ae, ok := apperr.As(err)
	if !ok {
		return "error"
	}
	switch ae.Status {
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	default:
		return "other"
	}
}
