// Package store defines the storage failure vocabulary shared by the Postgres
// and in-memory repositories, plus a generic in-memory table.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by repositories when a keyed lookup matches nothing.
var ErrNotFound = errors.New("store: record not found")

// Kind classifies a storage failure.
type Kind string

const (
	KindUnique           Kind = "unique"
	KindNotFound         Kind = "not_found"
	KindForeignKey       Kind = "foreign_key"
	KindRequiredRelation Kind = "required_relation"
	KindSchema           Kind = "schema"
	KindValidation       Kind = "validation"
)

// Postgres SQLSTATE codes we classify.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgUndefinedTable      = "42P01"
	pgUndefinedColumn     = "42703"
	pgDataExceptionClass  = "22"
)

// ConstraintError is a storage failure with a known kind. Field is the
// offending column when the backend reports it.
type ConstraintError struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *ConstraintError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("store: %s violation on %s", e.Kind, e.Field)
	}
	if e.Message != "" {
		return fmt.Sprintf("store: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("store: %s violation", e.Kind)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Unique builds a unique-constraint failure for field.
func Unique(field string) error {
	return &ConstraintError{Kind: KindUnique, Field: field}
}

// ForeignKey builds a referential-integrity failure for field.
func ForeignKey(field string) error {
	return &ConstraintError{Kind: KindForeignKey, Field: field}
}

// Inspect reports the storage kind of err, understanding ConstraintError,
// ErrNotFound, sql.ErrNoRows and Postgres errors. ok is false for anything else.
func Inspect(err error) (ce *ConstraintError, ok bool) {
	if err == nil {
		return nil, false
	}
	if errors.As(err, &ce) {
		return ce, true
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		return &ConstraintError{Kind: KindNotFound, Err: err}, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromPg(pgErr)
	}
	return nil, false
}

func fromPg(pgErr *pgconn.PgError) (*ConstraintError, bool) {
	ce := &ConstraintError{Field: pgErr.ColumnName, Message: pgErr.Message, Err: pgErr}
	switch {
	case pgErr.Code == pgUniqueViolation:
		ce.Kind = KindUnique
		if ce.Field == "" {
			ce.Field = fieldFromDetail(pgErr.Detail)
		}
	case pgErr.Code == pgForeignKeyViolation:
		ce.Kind = KindForeignKey
		if ce.Field == "" {
			ce.Field = fieldFromDetail(pgErr.Detail)
		}
	case pgErr.Code == pgNotNullViolation:
		ce.Kind = KindRequiredRelation
	case pgErr.Code == pgUndefinedTable, pgErr.Code == pgUndefinedColumn:
		ce.Kind = KindSchema
	case pgErr.Code == pgCheckViolation, len(pgErr.Code) == 5 && pgErr.Code[:2] == pgDataExceptionClass:
		ce.Kind = KindValidation
	default:
		return nil, false
	}
	return ce, true
}

// fieldFromDetail extracts "email" from a Postgres detail such as
// `Key (email)=(a@b.c) already exists.`
func fieldFromDetail(detail string) string {
	const prefix = "Key ("
	if len(detail) < len(prefix) || detail[:len(prefix)] != prefix {
		return ""
	}
	rest := detail[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ')' {
			return rest[:i]
		}
	}
	return ""
}
