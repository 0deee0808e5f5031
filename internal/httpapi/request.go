package httpapi

import (
	"errors"
	"net/http"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/audit"
	"clinic-platform/internal/auth"
	"clinic-platform/internal/errclass"
	"clinic-platform/internal/rbac"
	"clinic-platform/internal/store"
	"clinic-platform/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	MsgInvalidBody  = "Invalid request body"
	MsgInvalidQuery = "Invalid query parameters"
)

// bindJSON decodes the body. Malformed JSON is a 400; rule violations are
// left for the service layer's validation.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return err
		}
		return apperr.Wrap(http.StatusBadRequest, MsgInvalidBody, err)
	}
	return nil
}

func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return apperr.Wrap(http.StatusBadRequest, MsgInvalidQuery, err)
	}
	return validation.Struct(dst)
}

func validateStruct(v any) error {
	return validation.Struct(v)
}

func pageFrom(c *gin.Context) (store.PageRequest, error) {
	var p store.PageRequest
	if err := bindQuery(c, &p); err != nil {
		return store.PageRequest{}, err
	}
	return p.Normalize(), nil
}

// principal returns the caller attached by the authorization gates.
func principal(c *gin.Context) (auth.Principal, bool) {
	return auth.PrincipalFrom(c.Request.Context())
}

func errNotFound() error {
	return apperr.NotFound(errclass.MsgNotFound)
}

func forbidden() error {
	return apperr.Forbidden(rbac.MsgInsufficientPermission)
}

// record queues an audit event for a mutation that already succeeded. It
// never fails the request.
func (h *Handlers) record(c *gin.Context, e audit.Event) {
	if h.Recorder == nil {
		return
	}
	if e.UserID == "" {
		e.UserID = auth.UserID(c.Request.Context())
	}
	e.IPAddress = c.ClientIP()
	e.UserAgent = c.Request.UserAgent()
	h.Recorder.Record(c.Request.Context(), e)
}
