package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

var ErrInvalidRetention = errors.New("audit: retention must be positive")

// Service exposes the read projections over the log and the retention
// cleanup. It never writes events; that is the Recorder's job.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Event, error) {
	return s.repo.Recent(ctx, clampLimit(limit))
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) History(ctx context.Context, resource, resourceID string, limit int) ([]Event, error) {
	return s.repo.History(ctx, resource, resourceID, clampLimit(limit))
}

func (s *Service) Activity(ctx context.Context, userID string, limit int) ([]Event, error) {
	return s.repo.Activity(ctx, userID, clampLimit(limit))
}

// Cleanup deletes events older than olderThan and returns how many were removed.
func (s *Service) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, ErrInvalidRetention
	}
	return s.repo.DeleteBefore(ctx, s.clock().UTC().Add(-olderThan))
}

// StartCleanup runs Cleanup every interval until ctx is cancelled. It is the
// only path that deletes events and runs outside request handling.
func (s *Service) StartCleanup(ctx context.Context, interval, retention time.Duration, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := s.Cleanup(ctx, retention)
				if err != nil {
					log.Error("audit cleanup failed", "error", err)
					continue
				}
				log.Info("audit cleanup", "removed", n, "retention", retention.String())
			}
		}
	}()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
