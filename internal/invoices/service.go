package invoices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/store"
	"clinic-platform/internal/validation"

	"github.com/google/uuid"
)

const (
	MsgNotPending    = "Invoice is not pending"
	MsgPaidImmutable = "Paid invoices cannot be deleted"
)

// BranchLookup is the referential check Create performs before writing.
type BranchLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo     Repository
	branches BranchLookup
	clock    func() time.Time
}

func NewService(repo Repository, branches BranchLookup) *Service {
	return &Service{repo: repo, branches: branches, clock: time.Now}
}

// Create issues a pending invoice on behalf of issuedBy. An unknown branch is
// a foreign-key failure whatever the backing store.
func (s *Service) Create(ctx context.Context, issuedBy string, in CreateInput) (Invoice, error) {
	in.Number = strings.TrimSpace(in.Number)
	in.PatientName = strings.TrimSpace(in.PatientName)
	if err := validation.Struct(in); err != nil {
		return Invoice{}, err
	}
	if s.branches != nil {
		ok, err := s.branches.Exists(ctx, in.BranchID)
		if err != nil {
			return Invoice{}, err
		}
		if !ok {
			return Invoice{}, store.ForeignKey("branchId")
		}
	}

	now := s.clock().UTC()
	id := uuid.New()
	number := in.Number
	if number == "" {
		number = fmt.Sprintf("INV-%s-%s", now.Format("20060102"), strings.ToUpper(id.String()[:8]))
	}
	inv := Invoice{
		ID:          id.String(),
		Number:      number,
		BranchID:    in.BranchID,
		PatientName: in.PatientName,
		Description: strings.TrimSpace(in.Description),
		AmountMinor: in.AmountMinor,
		Currency:    in.Currency,
		Status:      StatusPending,
		IssuedBy:    issuedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	return inv, nil
}

func (s *Service) Get(ctx context.Context, id string) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, page store.PageRequest) ([]Invoice, int64, error) {
	if err := validation.Struct(f); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f, page.Normalize())
}

// Pay settles a pending invoice. Paying anything else is a conflict.
func (s *Service) Pay(ctx context.Context, id, paidBy string) (Invoice, error) {
	inv, err := s.repo.MarkPaid(ctx, id, paidBy, s.clock().UTC())
	if errors.Is(err, ErrNotPending) {
		return Invoice{}, apperr.Wrap(http.StatusConflict, MsgNotPending, err)
	}
	return inv, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status == StatusPaid {
		return apperr.Conflict(MsgPaidImmutable)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
