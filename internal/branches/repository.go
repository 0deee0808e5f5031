package branches

import (
	"context"

	"clinic-platform/internal/store"
)

// Repository persists branches. A duplicate code is a unique violation on "code".
type Repository interface {
	Create(ctx context.Context, b Branch) error
	Get(ctx context.Context, id string) (Branch, error)
	List(ctx context.Context, activeOnly bool, page store.PageRequest) ([]Branch, int64, error)
	Update(ctx context.Context, b Branch) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (total, active int64, err error)
}
