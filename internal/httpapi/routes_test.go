package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-platform/internal/auth"
	"clinic-platform/internal/config"
	"clinic-platform/internal/rbac"
	"clinic-platform/internal/ratelimit"
	"clinic-platform/internal/users"

	"github.com/gin-gonic/gin"
)

func TestRegister_LimiterCoversAPIOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret-that-is-long-enough-0123456789",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	userSvc := users.NewService(users.NewMemoryRepo())
	guard := rbac.NewGuard(auth.NewResolver(tokens, userSvc), rbac.DefaultPolicy(), nil)

	r := gin.New()
	r.Use(ErrorHandler(nil), Recovery())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	h := &Handlers{Users: userSvc}
	if err := h.Register(r, guard, ratelimit.NewPerIP(1, 1).Middleware()); err != nil {
		t.Fatalf("register: %v", err)
	}

	get := func(path string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.7:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	// The first call passes the limiter and fails authentication.
	if code := get("/api/v1/auth/me"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if code := get("/api/v1/auth/me"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	for i := 0; i < 3; i++ {
		if code := get("/healthz"); code != http.StatusOK {
			t.Fatalf("healthz call %d: expected 200, got %d", i, code)
		}
	}
}
