package errclass

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"clinic-platform/internal/apperr"
	"clinic-platform/internal/auth"
	"clinic-platform/internal/store"
	"clinic-platform/internal/validation"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify_Table(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category Category
		status   int
		message  string
	}{
		{"memory unique", store.Unique("email"), Conflict, http.StatusConflict, "Email already exists"},
		{"pg unique from detail", &pgconn.PgError{Code: "23505", Detail: "Key (code)=(NYC) already exists."}, Conflict, http.StatusConflict, "Code already exists"},
		{"unique without field", &store.ConstraintError{Kind: store.KindUnique}, Conflict, http.StatusConflict, "Resource already exists"},
		{"not found", fmt.Errorf("get user: %w", store.ErrNotFound), NotFound, http.StatusNotFound, MsgNotFound},
		{"no rows", sql.ErrNoRows, NotFound, http.StatusNotFound, MsgNotFound},
		{"foreign key", &pgconn.PgError{Code: "23503", Detail: "Key (branch_id)=(x) is not present"}, BadRequest, http.StatusBadRequest, MsgInvalidReference},
		{"required relation", &pgconn.PgError{Code: "23502", ColumnName: "branch_id"}, BadRequest, http.StatusBadRequest, MsgRequiredRelation},
		{"schema", &pgconn.PgError{Code: "42P01", Message: `relation "users" does not exist`}, Internal, http.StatusInternalServerError, MsgInternal},
		{"storage validation", &pgconn.PgError{Code: "23514", Message: "amount must be positive"}, Validation, http.StatusUnprocessableEntity, "amount must be positive"},
		{"app error", apperr.Conflict("Invoice is not pending"), Conflict, http.StatusConflict, "Invoice is not pending"},
		{"rate limited", apperr.TooManyRequests("Too many requests"), BadRequest, http.StatusTooManyRequests, "Too many requests"},
		{"token expired", auth.ErrTokenExpired, Unauthorized, http.StatusUnauthorized, "Token expired"},
		{"token invalid", fmt.Errorf("%w: bad sig", auth.ErrTokenInvalid), Unauthorized, http.StatusUnauthorized, "Invalid token"},
		{"unknown", errors.New("dial tcp 10.0.0.1:5432: connection refused"), Internal, http.StatusInternalServerError, MsgInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			if got.Category != tc.category || got.Status != tc.status || got.Message != tc.message {
				t.Fatalf("got %+v, want %s %d %q", got, tc.category, tc.status, tc.message)
			}
		})
	}
}

func TestClassify_ValidationCarriesFields(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name" validate:"required"`
	}
	got := Classify(validation.Struct(payload{Email: "nope"}))
	if got.Status != http.StatusUnprocessableEntity || got.Category != Validation {
		t.Fatalf("unexpected classification: %+v", got)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("expected one entry per violated rule, got %+v", got.Fields)
	}
}

func TestClassify_StorageWinsOverAppError(t *testing.T) {
	err := apperr.Wrap(http.StatusInternalServerError, "create failed", store.Unique("email"))
	if got := Classify(err); got.Status != http.StatusConflict {
		t.Fatalf("storage kind must take priority, got %+v", got)
	}
}

func TestClassify_FallbackNeverLeaksDetail(t *testing.T) {
	got := Classify(errors.New(`pq: syntax error at or near "SELEC"`))
	if got.Message != MsgInternal || got.Detail != "" || got.Fields != nil {
		t.Fatalf("fallback leaked detail: %+v", got)
	}
}
