package invoices

import (
	"context"
	"errors"
	"time"

	"clinic-platform/internal/store"
)

// ErrNotPending is returned by MarkPaid when the invoice exists but is no
// longer pending.
var ErrNotPending = errors.New("invoices: invoice is not pending")

// Repository persists invoices. Number is unique; BranchID references a branch.
type Repository interface {
	Create(ctx context.Context, inv Invoice) error
	Get(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, f ListFilter, page store.PageRequest) ([]Invoice, int64, error)
	// MarkPaid moves a pending invoice to paid atomically.
	MarkPaid(ctx context.Context, id, paidBy string, at time.Time) (Invoice, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}
