package invoices

import (
	"context"
	"sync"
	"time"

	"clinic-platform/internal/store"
)

type MemoryRepo struct {
	mu sync.Mutex
	t  *store.Table[Invoice]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		t: store.NewTable(func(i Invoice) string { return i.ID }).
			Unique("number", func(i Invoice) string { return i.Number }),
	}
}

func (r *MemoryRepo) Create(_ context.Context, inv Invoice) error { return r.t.Insert(inv) }

func (r *MemoryRepo) Get(_ context.Context, id string) (Invoice, error) { return r.t.Get(id) }

func (r *MemoryRepo) List(_ context.Context, f ListFilter, page store.PageRequest) ([]Invoice, int64, error) {
	rows := r.t.Scan(func(i Invoice) bool {
		if f.Status != "" && i.Status != f.Status {
			return false
		}
		if f.BranchID != "" && i.BranchID != f.BranchID {
			return false
		}
		return f.IssuedBy == "" || i.IssuedBy == f.IssuedBy
	})
	store.SortBy(rows, func(a, b Invoice) bool { return a.CreatedAt.After(b.CreatedAt) })
	page = page.Normalize()
	return store.Page(rows, page.Page, page.Limit), int64(len(rows)), nil
}

func (r *MemoryRepo) MarkPaid(_ context.Context, id, paidBy string, at time.Time) (Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, err := r.t.Get(id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Status != StatusPending {
		return Invoice{}, ErrNotPending
	}
	inv.Status = StatusPaid
	inv.PaidBy = paidBy
	inv.PaidAt = &at
	inv.UpdatedAt = at
	if err := r.t.Replace(inv); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) error { return r.t.Delete(id) }

func (r *MemoryRepo) Stats(_ context.Context) (Stats, error) {
	st := Stats{ByStatus: map[Status]int64{}}
	for _, i := range r.t.Scan(nil) {
		st.Total++
		st.ByStatus[i.Status]++
		switch i.Status {
		case StatusPaid:
			st.RevenueMinor += i.AmountMinor
		case StatusPending:
			st.PendingMinor += i.AmountMinor
		}
	}
	return st, nil
}
