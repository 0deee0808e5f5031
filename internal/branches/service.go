package branches

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinic-platform/internal/store"
	"clinic-platform/internal/validation"

	"github.com/google/uuid"
)

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Branch, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return Branch{}, err
	}
	now := s.clock().UTC()
	b := Branch{
		ID:        uuid.NewString(),
		Code:      in.Code,
		Name:      in.Name,
		Address:   strings.TrimSpace(in.Address),
		Phone:     in.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Branch{}, fmt.Errorf("create branch: %w", err)
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (Branch, error) {
	return s.repo.Get(ctx, id)
}

// List returns only active branches unless includeInactive is set.
func (s *Service) List(ctx context.Context, includeInactive bool, page store.PageRequest) ([]Branch, int64, error) {
	return s.repo.List(ctx, !includeInactive, page.Normalize())
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Branch, error) {
	if err := validation.Struct(in); err != nil {
		return Branch{}, err
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return Branch{}, err
	}
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		b.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		b.Phone = *in.Phone
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	b.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, b); err != nil {
		return Branch{}, fmt.Errorf("update branch: %w", err)
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Exists reports whether id names a branch; invoices use it as a referential check.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	if ce, ok := store.Inspect(err); ok && ce.Kind == store.KindNotFound {
		return false, nil
	}
	return false, err
}

func (s *Service) Count(ctx context.Context) (total, active int64, err error) {
	return s.repo.Count(ctx)
}
