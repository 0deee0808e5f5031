package audit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clinic-platform/internal/store"
)

type flakyRepo struct {
	*MemoryRepo
	failures atomic.Int32
	calls    atomic.Int32
	err      error
}

func (f *flakyRepo) Append(ctx context.Context, e Event) error {
	f.calls.Add(1)
	if f.failures.Load() > 0 {
		f.failures.Add(-1)
		return f.err
	}
	return f.MemoryRepo.Append(ctx, e)
}

func fastConfig() RecorderConfig {
	return RecorderConfig{QueueSize: 16, Workers: 2, MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func closeRecorder(t *testing.T, r *Recorder) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRecorder_DrainsOnClose(t *testing.T) {
	repo := NewMemoryRepo()
	r := NewRecorder(repo, fastConfig(), nil, nil)

	for i := 0; i < 10; i++ {
		r.Record(context.Background(), Event{Action: ActionCreate, Resource: "users", ResourceID: "u"})
	}
	closeRecorder(t, r)

	evs := repo.Events()
	if len(evs) != 10 {
		t.Fatalf("expected 10 events after drain, got %d", len(evs))
	}
	for _, e := range evs {
		if e.ID == "" || e.Timestamp.IsZero() {
			t.Fatalf("expected id and timestamp stamped: %+v", e)
		}
	}
}

func TestRecorder_RetriesTransientFailures(t *testing.T) {
	repo := &flakyRepo{MemoryRepo: NewMemoryRepo(), err: errors.New("connection reset")}
	repo.failures.Store(2)
	r := NewRecorder(repo, fastConfig(), nil, nil)

	r.Record(context.Background(), Event{Action: ActionUpdate, Resource: "branches", ResourceID: "b1"})
	closeRecorder(t, r)

	if got := len(repo.Events()); got != 1 {
		t.Fatalf("expected event delivered after retries, got %d", got)
	}
	if repo.calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", repo.calls.Load())
	}
}

func TestRecorder_GivesUpAfterMaxRetries(t *testing.T) {
	repo := &flakyRepo{MemoryRepo: NewMemoryRepo(), err: errors.New("down")}
	repo.failures.Store(100)
	cfg := fastConfig()
	cfg.MaxRetries = 2
	r := NewRecorder(repo, cfg, nil, nil)

	r.Record(context.Background(), Event{Action: ActionDelete})
	closeRecorder(t, r)

	if repo.calls.Load() != 3 {
		t.Fatalf("expected 1 attempt + 2 retries, got %d", repo.calls.Load())
	}
}

func TestRecorder_PermanentStorageErrorsAreNotRetried(t *testing.T) {
	repo := &flakyRepo{MemoryRepo: NewMemoryRepo(), err: &store.ConstraintError{Kind: store.KindSchema}}
	repo.failures.Store(100)
	r := NewRecorder(repo, fastConfig(), nil, nil)

	r.Record(context.Background(), Event{Action: ActionDelete})
	closeRecorder(t, r)

	if repo.calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", repo.calls.Load())
	}
}

func TestRecorder_CancelledRequestStillDelivers(t *testing.T) {
	repo := NewMemoryRepo()
	r := NewRecorder(repo, fastConfig(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Record(ctx, Event{Action: ActionPay, Resource: "invoices", ResourceID: "i1"})
	closeRecorder(t, r)

	if len(repo.Events()) != 1 {
		t.Fatalf("event issued before disconnect must still be written")
	}
}

type blockingRepo struct {
	*MemoryRepo
	release chan struct{}
	once    sync.Once
	started chan struct{}
}

func (b *blockingRepo) Append(ctx context.Context, e Event) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.MemoryRepo.Append(ctx, e)
}

func TestRecorder_FullQueueDropsWithoutBlocking(t *testing.T) {
	repo := &blockingRepo{MemoryRepo: NewMemoryRepo(), release: make(chan struct{}), started: make(chan struct{})}
	r := NewRecorder(repo, RecorderConfig{QueueSize: 1, Workers: 1}, nil, nil)

	r.Record(context.Background(), Event{Action: ActionCreate})
	<-repo.started
	r.Record(context.Background(), Event{Action: ActionCreate})

	done := make(chan struct{})
	go func() {
		r.Record(context.Background(), Event{Action: ActionCreate})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Record blocked on a full queue")
	}

	close(repo.release)
	closeRecorder(t, r)
	if got := len(repo.Events()); got != 2 {
		t.Fatalf("expected 2 delivered and 1 dropped, got %d delivered", got)
	}
}

func TestRecorder_RecordAfterCloseIsDropped(t *testing.T) {
	repo := NewMemoryRepo()
	r := NewRecorder(repo, fastConfig(), nil, nil)
	closeRecorder(t, r)

	r.Record(context.Background(), Event{Action: ActionCreate})
	if len(repo.Events()) != 0 {
		t.Fatalf("closed recorder must not accept events")
	}
	closeRecorder(t, r)
}
