package httpapi

import (
	"fmt"
	"io"
	"runtime/debug"

	"clinic-platform/internal/errclass"
	"clinic-platform/internal/metrics"
	"clinic-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler is the single classification boundary. Handlers and gates
// push errors with c.Error; this middleware logs every one of them with the
// request context, the handler it came from and the concrete types along
// its wrap chain, then writes the envelope for the last.
func ErrorHandler(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		ce := errclass.Classify(err)
		m.ErrorClassified(string(ce.Category))

		attrs := []any{
			"category", ce.Category,
			"status", ce.Status,
			"method", c.Request.Method,
			"url", c.Request.URL.String(),
			"ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"handler", c.HandlerName(),
			"error", err.Error(),
			"error_chain", errorChain(err),
		}
		l := logger.FromGin(c)
		if ce.Status >= 500 {
			l.Error("request failed", attrs...)
		} else {
			l.Warn("request rejected", attrs...)
		}

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(ce.Status, Envelope{
			Success: false,
			Message: ce.Message,
			Error:   string(ce.Category),
			Errors:  ce.Fields,
		})
	}
}

const maxChainDepth = 16

// errorChain lists the dynamic type of every error reachable through Unwrap,
// outermost first, depth-first through joined errors.
func errorChain(err error) []string {
	var chain []string
	var walk func(error)
	walk = func(e error) {
		for e != nil && len(chain) < maxChainDepth {
			chain = append(chain, fmt.Sprintf("%T", e))
			switch u := e.(type) {
			case interface{ Unwrap() []error }:
				for _, inner := range u.Unwrap() {
					walk(inner)
				}
				return
			case interface{ Unwrap() error }:
				e = u.Unwrap()
			default:
				return
			}
		}
	}
	walk(err)
	return chain
}

// Recovery turns a panic into an error for ErrorHandler, logging the stack.
// Install it after ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.FromGin(c).Error("panic recovered", "panic", recovered, "stack", string(debug.Stack()))
		fail(c, fmt.Errorf("panic: %v", recovered))
	})
}
