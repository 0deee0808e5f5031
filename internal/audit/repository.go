package audit

import (
	"context"
	"time"
)

// Repository is the persistence contract for audit events.
//
// It is append-only: there is no Update, and DeleteBefore exists solely for
// retention. Append must be idempotent on Event.ID because the Recorder retries.
type Repository interface {
	Append(ctx context.Context, e Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
	Stats(ctx context.Context) (Stats, error)
	History(ctx context.Context, resource, resourceID string, limit int) ([]Event, error)
	Activity(ctx context.Context, userID string, limit int) ([]Event, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
