package store

import (
	"context"
	"database/sql"
	"fmt"

	"clinic-platform/pkg/utils"
)

// schema is applied idempotently at startup, in one transaction.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS branches (
  id          UUID PRIMARY KEY,
  code        TEXT NOT NULL UNIQUE,
  name        TEXT NOT NULL,
  address     TEXT NOT NULL DEFAULT '',
  phone       TEXT NOT NULL DEFAULT '',
  is_active   BOOLEAN NOT NULL DEFAULT TRUE,
  created_at  TIMESTAMPTZ NOT NULL,
  updated_at  TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS users (
  id            UUID PRIMARY KEY,
  email         TEXT NOT NULL UNIQUE,
  name          TEXT NOT NULL,
  role          TEXT NOT NULL,
  branch_id     UUID NULL REFERENCES branches(id),
  password_hash TEXT NOT NULL,
  is_active     BOOLEAN NOT NULL DEFAULT TRUE,
  created_at    TIMESTAMPTZ NOT NULL,
  updated_at    TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS invoices (
  id            UUID PRIMARY KEY,
  number        TEXT NOT NULL UNIQUE,
  branch_id     UUID NOT NULL REFERENCES branches(id),
  patient_name  TEXT NOT NULL,
  description   TEXT NOT NULL DEFAULT '',
  amount_minor  BIGINT NOT NULL CHECK (amount_minor > 0),
  currency      CHAR(3) NOT NULL,
  status        TEXT NOT NULL CHECK (status IN ('pending', 'paid')),
  issued_by     UUID NOT NULL,
  paid_by       UUID NULL,
  paid_at       TIMESTAMPTZ NULL,
  created_at    TIMESTAMPTZ NOT NULL,
  updated_at    TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS invoices_issued_by_idx ON invoices (issued_by, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
  id           TEXT PRIMARY KEY,
  user_id      TEXT NULL,
  action       TEXT NOT NULL,
  resource     TEXT NULL,
  resource_id  TEXT NULL,
  description  TEXT NULL,
  metadata     JSONB NULL,
  ip_address   TEXT NULL,
  user_agent   TEXT NULL,
  created_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS audit_events_created_idx ON audit_events (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS audit_events_resource_idx ON audit_events (resource, resource_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS audit_events_user_idx ON audit_events (user_id, created_at DESC)`,
}

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	return utils.WithTx(ctx, db, nil, func(ctx context.Context, tx *sql.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema statement %d: %w", i, err)
			}
		}
		return nil
	})
}
