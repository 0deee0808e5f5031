package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/store"
)

// Sessions implements login, refresh-token rotation and logout on top of the
// token Manager. Refresh tokens are revocable through the RevocationStore.
type Sessions struct {
	tokens      *Manager
	accounts    Accounts
	revocations RevocationStore
	clock       func() time.Time
}

func NewSessions(tokens *Manager, accounts Accounts, revocations RevocationStore) *Sessions {
	return &Sessions{tokens: tokens, accounts: accounts, revocations: revocations, clock: time.Now}
}

// Login checks credentials against the live account. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Sessions) Login(ctx context.Context, email, password string) (Principal, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acct, err := s.accounts.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Principal{}, TokenPair{}, apperr.Unauthorized(MsgInvalidCredentials)
		}
		return Principal{}, TokenPair{}, fmt.Errorf("login lookup: %w", err)
	}
	if !CheckPassword(acct.PasswordHash, password) {
		return Principal{}, TokenPair{}, apperr.Unauthorized(MsgInvalidCredentials)
	}
	if !acct.IsActive {
		return Principal{}, TokenPair{}, apperr.Unauthorized(MsgUserDeactivated)
	}

	pair, err := s.tokens.IssuePair(s.clock(), Identity{UserID: acct.ID, Email: acct.Email, Role: acct.Role})
	if err != nil {
		return Principal{}, TokenPair{}, err
	}
	return principalOf(acct), pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued for the account's current role. Revocation is a single
// claim on the token id, so of two concurrent refreshes with the same token
// exactly one succeeds.
func (s *Sessions) Refresh(ctx context.Context, refreshToken string) (Principal, TokenPair, error) {
	now := s.clock()
	claims, err := s.tokens.Verify(strings.TrimSpace(refreshToken), TokenTypeRefresh, now)
	if err != nil {
		return Principal{}, TokenPair{}, tokenFailure(err)
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Principal{}, TokenPair{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Principal{}, TokenPair{}, apperr.Unauthorized(MsgTokenRevoked)
	}

	acct, err := s.accounts.AccountByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Principal{}, TokenPair{}, apperr.Unauthorized(MsgUserNotFound)
		}
		return Principal{}, TokenPair{}, fmt.Errorf("refresh lookup: %w", err)
	}
	if !acct.IsActive {
		return Principal{}, TokenPair{}, apperr.Unauthorized(MsgUserDeactivated)
	}

	claimed, err := s.revocations.RevokeIfNew(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return Principal{}, TokenPair{}, fmt.Errorf("revoke rotated token: %w", err)
	}
	if !claimed {
		return Principal{}, TokenPair{}, apperr.Unauthorized(MsgTokenRevoked)
	}
	pair, err := s.tokens.IssuePair(now, Identity{UserID: acct.ID, Email: acct.Email, Role: acct.Role})
	if err != nil {
		return Principal{}, TokenPair{}, err
	}
	return principalOf(acct), pair, nil
}

// Logout revokes the refresh token. Revoking twice is not an error.
func (s *Sessions) Logout(ctx context.Context, refreshToken string) (Claims, error) {
	claims, err := s.tokens.Verify(strings.TrimSpace(refreshToken), TokenTypeRefresh, s.clock())
	if err != nil {
		return Claims{}, tokenFailure(err)
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return Claims{}, fmt.Errorf("revoke token: %w", err)
	}
	return claims, nil
}

func principalOf(acct Account) Principal {
	return Principal{UserID: acct.ID, Email: acct.Email, Role: acct.Role, IsActive: acct.IsActive}
}
