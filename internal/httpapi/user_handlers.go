package httpapi

import (
	"clinic-platform/internal/apperr"
	"clinic-platform/internal/audit"
	"clinic-platform/internal/rbac"
	"clinic-platform/internal/users"

	"github.com/gin-gonic/gin"
)

const MsgCannotDeactivateSelf = "You cannot deactivate your own account"

type statusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func (h *Handlers) ListUsers(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		fail(c, err)
		return
	}
	var f users.ListFilter
	if err := bindQuery(c, &f); err != nil {
		fail(c, err)
		return
	}
	rows, total, err := h.Users.List(c.Request.Context(), f, page)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, "Users retrieved", rows, page, total)
}

func (h *Handlers) CreateUser(c *gin.Context) {
	var in users.CreateInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	u, err := h.Users.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.record(c, audit.Event{
		Action: audit.ActionCreate, Resource: rbac.ResourceUsers, ResourceID: u.ID,
		Description: "Created user " + u.Email,
		Metadata:    map[string]any{"email": u.Email, "role": u.Role},
	})
	created(c, "User created", u)
}

// GetUser serves the caller's own record with the base grant; anyone else's
// needs users:read[all].
func (h *Handlers) GetUser(c *gin.Context) {
	p, _ := principal(c)
	id := c.Param("id")
	if id != p.UserID && !h.can(p, rbac.ResourceUsers, rbac.ActionRead, rbac.CondAll) {
		fail(c, forbidden())
		return
	}
	u, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "User retrieved", u)
}

// UpdateUser lets callers edit themselves; editing others or changing a
// role needs users:update[all].
func (h *Handlers) UpdateUser(c *gin.Context) {
	p, _ := principal(c)
	id := c.Param("id")

	var in users.UpdateInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	if (id != p.UserID || in.Role != nil) && !h.can(p, rbac.ResourceUsers, rbac.ActionUpdate, rbac.CondAll) {
		fail(c, forbidden())
		return
	}

	u, err := h.Users.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	changed := []string{}
	if in.Name != nil {
		changed = append(changed, "name")
	}
	if in.Role != nil {
		changed = append(changed, "role")
	}
	if in.BranchID != nil {
		changed = append(changed, "branchId")
	}
	if in.Password != nil {
		changed = append(changed, "password")
	}
	h.record(c, audit.Event{
		Action: audit.ActionUpdate, Resource: rbac.ResourceUsers, ResourceID: u.ID,
		Description: "Updated user " + u.Email,
		Metadata:    map[string]any{"fields": changed},
	})
	ok(c, "User updated", u)
}

func (h *Handlers) SetUserStatus(c *gin.Context) {
	p, _ := principal(c)
	id := c.Param("id")

	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := validateStruct(req); err != nil {
		fail(c, err)
		return
	}
	if id == p.UserID && !*req.IsActive {
		fail(c, apperr.BadRequest(MsgCannotDeactivateSelf))
		return
	}

	u, err := h.Users.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		fail(c, err)
		return
	}
	action, msg := audit.ActionActivate, "User activated"
	if !u.IsActive {
		action, msg = audit.ActionDeactivate, "User deactivated"
	}
	h.record(c, audit.Event{Action: action, Resource: rbac.ResourceUsers, ResourceID: u.ID, Description: msg + ": " + u.Email})
	ok(c, msg, u)
}

func (h *Handlers) DeleteUser(c *gin.Context) {
	p, _ := principal(c)
	id := c.Param("id")
	if err := h.Users.Delete(c.Request.Context(), p.UserID, id); err != nil {
		fail(c, err)
		return
	}
	h.record(c, audit.Event{Action: audit.ActionDelete, Resource: rbac.ResourceUsers, ResourceID: id, Description: "Deleted user"})
	ok(c, "User deleted", nil)
}
