package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/auth"
	"clinic-platform/internal/rbac"
	"clinic-platform/internal/store"
	"clinic-platform/internal/validation"

	"github.com/google/uuid"
)

const MsgCannotDeleteSelf = "You cannot delete your own account"

// Service manages staff accounts and serves the live lookups the principal
// resolver and session flows depend on.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return User{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		Role:         in.Role,
		BranchID:     in.BranchID,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, page store.PageRequest) ([]User, int64, error) {
	if err := validation.Struct(f); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f, page.Normalize())
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (User, error) {
	if err := validation.Struct(in); err != nil {
		return User{}, err
	}
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.BranchID != nil {
		u.BranchID = *in.BranchID
	}
	if in.Password != nil {
		if u.PasswordHash, err = auth.HashPassword(*in.Password); err != nil {
			return User{}, err
		}
	}
	u.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// SetActive flips the active flag. Deactivation is enforced on the user's
// next request because the resolver reads the flag live.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.IsActive = active
	u.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, fmt.Errorf("set user active: %w", err)
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return apperr.BadRequest(MsgCannotDeleteSelf)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Counts(ctx)
}

// EnsureAdmin creates an active ADMIN with email unless one already exists.
// It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	_, err = s.Create(ctx, CreateInput{Email: email, Password: password, Name: "Administrator", Role: rbac.RoleAdmin})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) AccountByID(ctx context.Context, id string) (auth.Account, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return auth.Account{}, err
	}
	return account(u), nil
}

func (s *Service) AccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return auth.Account{}, err
	}
	return account(u), nil
}

func account(u User) auth.Account {
	return auth.Account{ID: u.ID, Email: u.Email, Role: u.Role, PasswordHash: u.PasswordHash, IsActive: u.IsActive}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
