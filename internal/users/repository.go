package users

import (
	"context"

	"clinic-platform/internal/store"
)

// Repository persists users. Lookups that match nothing return
// store.ErrNotFound; a duplicate email is a store unique violation on "email".
type Repository interface {
	Create(ctx context.Context, u User) error
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, f ListFilter, page store.PageRequest) ([]User, int64, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context) (Counts, error)
}
