// Package dashboard aggregates the counters the presentation layer charts.
package dashboard

import (
	"context"
	"time"

	"clinic-platform/internal/invoices"
	"clinic-platform/internal/users"
)

type UserCounter interface {
	Counts(ctx context.Context) (users.Counts, error)
}

type BranchCounter interface {
	Count(ctx context.Context) (total, active int64, err error)
}

type InvoiceStats interface {
	Stats(ctx context.Context) (invoices.Stats, error)
}

type BranchCounts struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

type Stats struct {
	Users       users.Counts   `json:"users"`
	Branches    BranchCounts   `json:"branches"`
	Invoices    invoices.Stats `json:"invoices"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

type Service struct {
	users    UserCounter
	branches BranchCounter
	invoices InvoiceStats
	clock    func() time.Time
}

func NewService(u UserCounter, b BranchCounter, i InvoiceStats) *Service {
	return &Service{users: u, branches: b, invoices: i, clock: time.Now}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	uc, err := s.users.Counts(ctx)
	if err != nil {
		return Stats{}, err
	}
	total, active, err := s.branches.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	inv, err := s.invoices.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Users:       uc,
		Branches:    BranchCounts{Total: total, Active: active},
		Invoices:    inv,
		GeneratedAt: s.clock().UTC(),
	}, nil
}
