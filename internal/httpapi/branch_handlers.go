package httpapi

import (
	"clinic-platform/internal/audit"
	"clinic-platform/internal/branches"
	"clinic-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// ListBranches is public. Anonymous callers and roles without branches:read
// see active branches only.
func (h *Handlers) ListBranches(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		fail(c, err)
		return
	}
	includeInactive := false
	if p, ok := principal(c); ok {
		includeInactive = h.can(p, rbac.ResourceBranches, rbac.ActionRead)
	}
	rows, total, err := h.Branches.List(c.Request.Context(), includeInactive, page)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, "Branches retrieved", rows, page, total)
}

func (h *Handlers) GetBranch(c *gin.Context) {
	b, err := h.Branches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !b.IsActive {
		p, ok := principal(c)
		if !ok || !h.can(p, rbac.ResourceBranches, rbac.ActionRead) {
			fail(c, errNotFound())
			return
		}
	}
	ok(c, "Branch retrieved", b)
}

func (h *Handlers) CreateBranch(c *gin.Context) {
	var in branches.CreateInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	b, err := h.Branches.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.record(c, audit.Event{
		Action: audit.ActionCreate, Resource: rbac.ResourceBranches, ResourceID: b.ID,
		Description: "Created branch " + b.Code,
		Metadata:    map[string]any{"code": b.Code, "name": b.Name},
	})
	created(c, "Branch created", b)
}

func (h *Handlers) UpdateBranch(c *gin.Context) {
	var in branches.UpdateInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	b, err := h.Branches.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.record(c, audit.Event{Action: audit.ActionUpdate, Resource: rbac.ResourceBranches, ResourceID: b.ID, Description: "Updated branch " + b.Code})
	ok(c, "Branch updated", b)
}

func (h *Handlers) DeleteBranch(c *gin.Context) {
	id := c.Param("id")
	if err := h.Branches.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	h.record(c, audit.Event{Action: audit.ActionDelete, Resource: rbac.ResourceBranches, ResourceID: id, Description: "Deleted branch"})
	ok(c, "Branch deleted", nil)
}
