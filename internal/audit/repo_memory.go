package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory append-only repository for tests and local runs.
type MemoryRepo struct {
	mu     sync.RWMutex
	events []Event
	seen   map[string]struct{}
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{seen: make(map[string]struct{})} }

func (r *MemoryRepo) Append(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[e.ID]; dup {
		return nil
	}
	r.seen[e.ID] = struct{}{}
	e.Metadata = cloneMetadata(e.Metadata)
	r.events = append(r.events, e)
	return nil
}

func (r *MemoryRepo) Recent(_ context.Context, limit int) ([]Event, error) {
	return r.newest(nil, limit), nil
}

func (r *MemoryRepo) History(_ context.Context, resource, resourceID string, limit int) ([]Event, error) {
	return r.newest(func(e Event) bool {
		return e.Resource == resource && e.ResourceID == resourceID
	}, limit), nil
}

func (r *MemoryRepo) Activity(_ context.Context, userID string, limit int) ([]Event, error) {
	return r.newest(func(e Event) bool { return e.UserID == userID }, limit), nil
}

func (r *MemoryRepo) Stats(_ context.Context) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byAction := map[string]int64{}
	byResource := map[string]int64{}
	byUser := map[string]int64{}
	for _, e := range r.events {
		byAction[string(e.Action)]++
		if e.Resource != "" {
			byResource[e.Resource]++
		}
		if e.UserID != "" {
			byUser[e.UserID]++
		}
	}
	return Stats{
		Total:      int64(len(r.events)),
		ByAction:   counts(byAction),
		ByResource: counts(byResource),
		ByUser:     counts(byUser),
	}, nil
}

func (r *MemoryRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	var removed int64
	for _, e := range r.events {
		if e.Timestamp.Before(cutoff) {
			delete(r.seen, e.ID)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return removed, nil
}

// Events returns a copy of every stored event in append order.
func (r *MemoryRepo) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *MemoryRepo) newest(match func(Event) bool, limit int) []Event {
	r.mu.RLock()
	out := make([]Event, 0)
	for i := len(r.events) - 1; i >= 0; i-- {
		if match == nil || match(r.events[i]) {
			out = append(out, r.events[i])
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func counts(m map[string]int64) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
