package httpapi

import (
	"fmt"

	"clinic-platform/internal/audit"
	"clinic-platform/internal/invoices"
	"clinic-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) CreateInvoice(c *gin.Context) {
	p, _ := principal(c)
	var in invoices.CreateInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	inv, err := h.Invoices.Create(c.Request.Context(), p.UserID, in)
	if err != nil {
		fail(c, err)
		return
	}
	h.record(c, audit.Event{
		Action: audit.ActionCreate, Resource: rbac.ResourceInvoices, ResourceID: inv.ID,
		Description: "Created invoice " + inv.Number,
		Metadata: map[string]any{
			"number":      inv.Number,
			"branchId":    inv.BranchID,
			"amountMinor": inv.AmountMinor,
			"currency":    inv.Currency,
		},
	})
	created(c, "Invoice created", inv)
}

// ListInvoices narrows the listing to the caller's own invoices unless the
// role holds invoices:read[all].
func (h *Handlers) ListInvoices(c *gin.Context) {
	p, _ := principal(c)
	page, err := pageFrom(c)
	if err != nil {
		fail(c, err)
		return
	}
	var f invoices.ListFilter
	if err := bindQuery(c, &f); err != nil {
		fail(c, err)
		return
	}
	if !h.can(p, rbac.ResourceInvoices, rbac.ActionRead, rbac.CondAll) {
		f.IssuedBy = p.UserID
	}
	rows, total, err := h.Invoices.List(c.Request.Context(), f, page)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, "Invoices retrieved", rows, page, total)
}

func (h *Handlers) InvoiceStats(c *gin.Context) {
	st, err := h.Invoices.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Invoice statistics retrieved", st)
}

func (h *Handlers) GetInvoice(c *gin.Context) {
	p, _ := principal(c)
	inv, err := h.Invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if inv.IssuedBy != p.UserID && !h.can(p, rbac.ResourceInvoices, rbac.ActionRead, rbac.CondAll) {
		fail(c, forbidden())
		return
	}
	ok(c, "Invoice retrieved", inv)
}

func (h *Handlers) PayInvoice(c *gin.Context) {
	p, _ := principal(c)
	inv, err := h.Invoices.Pay(c.Request.Context(), c.Param("id"), p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	h.record(c, audit.Event{
		Action: audit.ActionPay, Resource: rbac.ResourceInvoices, ResourceID: inv.ID,
		Description: fmt.Sprintf("Paid invoice %s (%d %s)", inv.Number, inv.AmountMinor, inv.Currency),
		Metadata:    map[string]any{"amountMinor": inv.AmountMinor, "currency": inv.Currency},
	})
	ok(c, "Invoice paid", inv)
}

func (h *Handlers) DeleteInvoice(c *gin.Context) {
	id := c.Param("id")
	if err := h.Invoices.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	h.record(c, audit.Event{Action: audit.ActionDelete, Resource: rbac.ResourceInvoices, ResourceID: id, Description: "Deleted invoice"})
	ok(c, "Invoice deleted", nil)
}
