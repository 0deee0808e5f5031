package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"clinic-platform/internal/metrics"
	"clinic-platform/internal/store"
	"clinic-platform/pkg/logger"

	"github.com/cenkalti/backoff/v5"
)

// ErrRecorderClosed is reported (to the log, never the caller) for events
// recorded after Close.
var ErrRecorderClosed = errors.New("audit: recorder closed")

type RecorderConfig struct {
	QueueSize      int
	Workers        int
	MaxRetries     int
	AttemptTimeout time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (c RecorderConfig) withDefaults() RecorderConfig {
	out := c
	if out.QueueSize <= 0 {
		out.QueueSize = 1024
	}
	if out.Workers <= 0 {
		out.Workers = 2
	}
	if out.MaxRetries < 0 {
		out.MaxRetries = 0
	}
	if out.AttemptTimeout <= 0 {
		out.AttemptTimeout = 5 * time.Second
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = 100 * time.Millisecond
	}
	if out.MaxBackoff <= 0 {
		out.MaxBackoff = 5 * time.Second
	}
	return out
}

type job struct {
	ctx   context.Context
	event Event
}

// Recorder delivers audit events off the request path. Record never blocks
// and never fails the caller; delivery problems are logged and counted.
type Recorder struct {
	repo    Repository
	cfg     RecorderConfig
	log     *slog.Logger
	metrics *metrics.Metrics
	clock   func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan job
	wg     sync.WaitGroup
}

func NewRecorder(repo Repository, cfg RecorderConfig, log *slog.Logger, m *metrics.Metrics) *Recorder {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	r := &Recorder{
		repo:    repo,
		cfg:     cfg,
		log:     log,
		metrics: m,
		clock:   time.Now,
		queue:   make(chan job, cfg.QueueSize),
	}
	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go r.worker()
	}
	return r
}

// Record stamps e with an id and timestamp when missing and queues it. The
// request context is detached from cancellation: a client disconnect does
// not abandon an event that was already issued.
func (r *Recorder) Record(ctx context.Context, e Event) {
	if e.Action == "" {
		r.fail(ctx, e, errors.New("audit: action is required"), metrics.AuditDropped)
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.clock().UTC()
	}
	if e.ID == "" {
		e.ID = NewID(e.Timestamp)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.fail(ctx, e, ErrRecorderClosed, metrics.AuditDropped)
		return
	}
	select {
	case r.queue <- job{ctx: context.WithoutCancel(ctx), event: e}:
	default:
		r.fail(ctx, e, errors.New("audit: queue full"), metrics.AuditDropped)
	}
}

// Close stops intake and waits for queued events to be delivered. It returns
// ctx.Err() if the drain does not finish in time; workers keep draining.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for j := range r.queue {
		r.deliver(j)
	}
}

func (r *Recorder) deliver(j job) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialBackoff
	b.MaxInterval = r.cfg.MaxBackoff

	_, err := backoff.Retry(j.ctx, func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(j.ctx, r.cfg.AttemptTimeout)
		defer cancel()
		if err := r.repo.Append(ctx, j.event); err != nil {
			if permanent(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.cfg.MaxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.metrics.Audit(metrics.AuditRetried)
			r.logger(j.ctx).Warn("audit delivery retry",
				"event_id", j.event.ID, "action", j.event.Action, "next_in", next.String(), "error", err)
		}),
	)
	if err != nil {
		r.fail(j.ctx, j.event, err, metrics.AuditFailed)
		return
	}
	r.metrics.Audit(metrics.AuditRecorded)
}

// permanent reports storage failures that a retry cannot fix.
func permanent(err error) bool {
	ce, ok := store.Inspect(err)
	if !ok {
		return false
	}
	return ce.Kind == store.KindSchema || ce.Kind == store.KindValidation
}

func (r *Recorder) fail(ctx context.Context, e Event, err error, outcome string) {
	r.metrics.Audit(outcome)
	r.logger(ctx).Error("audit delivery failed",
		"outcome", outcome,
		"event_id", e.ID,
		"action", e.Action,
		"resource", e.Resource,
		"resource_id", e.ResourceID,
		"error", err,
	)
}

func (r *Recorder) logger(ctx context.Context) *slog.Logger {
	if l := logger.From(ctx); l != slog.Default() {
		return l
	}
	return r.log
}
