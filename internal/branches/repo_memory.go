package branches

import (
	"context"

	"clinic-platform/internal/store"
)

type MemoryRepo struct {
	t *store.Table[Branch]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		t: store.NewTable(func(b Branch) string { return b.ID }).
			Unique("code", func(b Branch) string { return b.Code }),
	}
}

func (r *MemoryRepo) Create(_ context.Context, b Branch) error { return r.t.Insert(b) }

func (r *MemoryRepo) Get(_ context.Context, id string) (Branch, error) { return r.t.Get(id) }

func (r *MemoryRepo) List(_ context.Context, activeOnly bool, page store.PageRequest) ([]Branch, int64, error) {
	rows := r.t.Scan(func(b Branch) bool { return !activeOnly || b.IsActive })
	store.SortBy(rows, func(a, b Branch) bool { return a.Name < b.Name })
	page = page.Normalize()
	return store.Page(rows, page.Page, page.Limit), int64(len(rows)), nil
}

func (r *MemoryRepo) Update(_ context.Context, b Branch) error { return r.t.Replace(b) }

func (r *MemoryRepo) Delete(_ context.Context, id string) error { return r.t.Delete(id) }

func (r *MemoryRepo) Count(_ context.Context) (int64, int64, error) {
	var total, active int64
	for _, b := range r.t.Scan(nil) {
		total++
		if b.IsActive {
			active++
		}
	}
	return total, active, nil
}
