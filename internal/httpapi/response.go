package httpapi

import (
	"net/http"

	"clinic-platform/internal/store"
	"clinic-platform/internal/validation"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every response.
type Envelope struct {
	Success    bool                    `json:"success"`
	Message    string                  `json:"message"`
	Data       any                     `json:"data,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Errors     []validation.FieldError `json:"errors,omitempty"`
	Pagination *Pagination             `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func NewPagination(p store.PageRequest, total int64) *Pagination {
	p = p.Normalize()
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return &Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

func ok(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func paginated(c *gin.Context, message string, data any, p store.PageRequest, total int64) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: NewPagination(p, total)})
}

// fail hands err to the error boundary and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
