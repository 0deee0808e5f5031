package httpapi

import (
	"net/http"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/audit"
	"clinic-platform/internal/auth"
	"clinic-platform/internal/ratelimit"
	"clinic-platform/internal/validation"
	"clinic-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type sessionResponse struct {
	User   auth.Principal `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

// Login checks credentials. Attempts are counted per client and email; a
// limiter outage is logged and does not block logins.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		fail(c, err)
		return
	}

	key := ratelimit.LoginKey(c.ClientIP(), req.Email)
	if h.LoginLimiter != nil {
		allowed, err := h.LoginLimiter.Hit(c.Request.Context(), key)
		if err != nil {
			logger.FromGin(c).Warn("login limiter unavailable", "error", err)
		} else if !allowed {
			fail(c, apperr.TooManyRequests(ratelimit.MsgTooManyLoginAttempts))
			return
		}
	}

	p, pair, err := h.Sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	if h.LoginLimiter != nil {
		if err := h.LoginLimiter.Reset(c.Request.Context(), key); err != nil {
			logger.FromGin(c).Warn("login limiter reset failed", "error", err)
		}
	}

	h.record(c, audit.Event{UserID: p.UserID, Action: audit.ActionLogin, Resource: "auth", ResourceID: p.UserID, Description: "User logged in"})
	ok(c, "Login successful", sessionResponse{User: p, Tokens: pair})
}

func (h *Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		fail(c, err)
		return
	}

	p, pair, err := h.Sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	h.record(c, audit.Event{UserID: p.UserID, Action: audit.ActionRefresh, Resource: "auth", ResourceID: p.UserID, Description: "Session refreshed"})
	ok(c, "Token refreshed", sessionResponse{User: p, Tokens: pair})
}

func (h *Handlers) Logout(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		fail(c, err)
		return
	}

	claims, err := h.Sessions.Logout(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	h.record(c, audit.Event{UserID: claims.UserID, Action: audit.ActionLogout, Resource: "auth", ResourceID: claims.UserID, Description: "User logged out"})
	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Logged out"})
}

func (h *Handlers) Me(c *gin.Context) {
	p, _ := principal(c)
	ok(c, "Current user", p)
}
