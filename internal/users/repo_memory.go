package users

import (
	"context"

	"clinic-platform/internal/store"
)

type MemoryRepo struct {
	t *store.Table[User]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		t: store.NewTable(func(u User) string { return u.ID }).
			Unique("email", func(u User) string { return u.Email }),
	}
}

func (r *MemoryRepo) Create(_ context.Context, u User) error { return r.t.Insert(u) }

func (r *MemoryRepo) Get(_ context.Context, id string) (User, error) { return r.t.Get(id) }

func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (User, error) {
	return r.t.Find(func(u User) bool { return u.Email == email })
}

func (r *MemoryRepo) List(_ context.Context, f ListFilter, page store.PageRequest) ([]User, int64, error) {
	rows := r.t.Scan(func(u User) bool {
		if f.Role != "" && u.Role != f.Role {
			return false
		}
		if f.BranchID != "" && u.BranchID != f.BranchID {
			return false
		}
		return f.Active == nil || u.IsActive == *f.Active
	})
	store.SortBy(rows, func(a, b User) bool { return a.CreatedAt.After(b.CreatedAt) })
	page = page.Normalize()
	return store.Page(rows, page.Page, page.Limit), int64(len(rows)), nil
}

func (r *MemoryRepo) Update(_ context.Context, u User) error { return r.t.Replace(u) }

func (r *MemoryRepo) Delete(_ context.Context, id string) error { return r.t.Delete(id) }

func (r *MemoryRepo) Counts(_ context.Context) (Counts, error) {
	c := Counts{ByRole: map[string]int64{}}
	for _, u := range r.t.Scan(nil) {
		c.Total++
		if u.IsActive {
			c.Active++
		}
		c.ByRole[u.Role]++
	}
	return c, nil
}
