package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/store"
)

// Account is the live user record the resolver and session flows consult.
type Account struct {
	ID           string
	Email        string
	Role         string
	PasswordHash string
	IsActive     bool
}

// Accounts looks users up in the record store. Missing users are reported
// as store.ErrNotFound.
type Accounts interface {
	AccountByID(ctx context.Context, id string) (Account, error)
	AccountByEmail(ctx context.Context, email string) (Account, error)
}

// Resolver turns an Authorization header into a Principal.
type Resolver struct {
	tokens   *Manager
	accounts Accounts
	clock    func() time.Time
}

func NewResolver(tokens *Manager, accounts Accounts) *Resolver {
	return &Resolver{tokens: tokens, accounts: accounts, clock: time.Now}
}

// Resolve verifies the bearer token and re-reads the account so that
// deactivation takes effect on the very next request.
func (r *Resolver) Resolve(ctx context.Context, header string) (Principal, error) {
	tok, ok := BearerToken(header)
	if !ok {
		return Principal{}, apperr.Unauthorized(MsgTokenRequired)
	}

	claims, err := r.tokens.Verify(tok, TokenTypeAccess, r.clock())
	if err != nil {
		return Principal{}, tokenFailure(err)
	}

	acct, err := r.lookup(ctx, claims.UserID)
	if err != nil {
		return Principal{}, err
	}

	return Principal{
		UserID:   acct.ID,
		Email:    acct.Email,
		Role:     acct.Role,
		IsActive: acct.IsActive,
	}, nil
}

func (r *Resolver) lookup(ctx context.Context, userID string) (Account, error) {
	acct, err := r.accounts.AccountByID(ctx, userID)
	if err != nil {
		// No store cause on this error: a missing user classifies as 401, never 404.
		if errors.Is(err, store.ErrNotFound) {
			return Account{}, apperr.Unauthorized(MsgUserNotFound)
		}
		return Account{}, fmt.Errorf("resolve principal: %w", err)
	}
	if !acct.IsActive {
		return Account{}, apperr.Unauthorized(MsgUserDeactivated)
	}
	return acct, nil
}

func tokenFailure(err error) error {
	if errors.Is(err, ErrTokenExpired) {
		return apperr.Wrap(http.StatusUnauthorized, MsgTokenExpired, err)
	}
	return apperr.Wrap(http.StatusUnauthorized, MsgTokenInvalid, err)
}
