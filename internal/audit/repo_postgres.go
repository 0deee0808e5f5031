package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// PostgresRepo stores events in audit_events:
//
//	id TEXT PRIMARY KEY, user_id TEXT NULL, action TEXT NOT NULL,
//	resource TEXT NULL, resource_id TEXT NULL, description TEXT NULL,
//	metadata JSONB NULL, ip_address TEXT NULL, user_agent TEXT NULL,
//	created_at TIMESTAMPTZ NOT NULL
//
// The application role should hold INSERT, SELECT and DELETE only.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const eventColumns = `id, user_id, action, resource, resource_id, description, metadata, ip_address, user_agent, created_at`

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	var meta []byte
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("audit: encode metadata: %w", err)
		}
		meta = b
	}

	// ON CONFLICT keeps retried deliveries from duplicating the event.
	const q = `
INSERT INTO audit_events (` + eventColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO NOTHING
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		nullString(e.UserID),
		string(e.Action),
		nullString(e.Resource),
		nullString(e.ResourceID),
		nullString(e.Description),
		meta,
		nullString(e.IPAddress),
		nullString(e.UserAgent),
		e.Timestamp,
	)
	return err
}

func (r *PostgresRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM audit_events ORDER BY created_at DESC, id DESC LIMIT $1`
	return r.query(ctx, q, limit)
}

func (r *PostgresRepo) History(ctx context.Context, resource, resourceID string, limit int) ([]Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM audit_events
WHERE resource = $1 AND resource_id = $2
ORDER BY created_at DESC, id DESC LIMIT $3`
	return r.query(ctx, q, resource, resourceID, limit)
}

func (r *PostgresRepo) Activity(ctx context.Context, userID string, limit int) ([]Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM audit_events
WHERE user_id = $1
ORDER BY created_at DESC, id DESC LIMIT $2`
	return r.query(ctx, q, userID, limit)
}

func (r *PostgresRepo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`).Scan(&s.Total); err != nil {
		return Stats{}, err
	}
	var err error
	if s.ByAction, err = r.group(ctx, "action"); err != nil {
		return Stats{}, err
	}
	if s.ByResource, err = r.group(ctx, "resource"); err != nil {
		return Stats{}, err
	}
	if s.ByUser, err = r.group(ctx, "user_id"); err != nil {
		return Stats{}, err
	}
	return s, nil
}

func (r *PostgresRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// group counts events per value of column; column is always a constant from Stats.
func (r *PostgresRepo) group(ctx context.Context, column string) ([]Count, error) {
	q := `SELECT ` + column + `, COUNT(*) FROM audit_events
WHERE ` + column + ` IS NOT NULL
GROUP BY ` + column + `
ORDER BY 2 DESC, 1 ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Count, 0)
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) query(ctx context.Context, q string, args ...any) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var (
		e                                  Event
		action                             string
		userID, resource, resourceID, desc sql.NullString
		ip, ua                             sql.NullString
		meta                               []byte
	)
	if err := rows.Scan(&e.ID, &userID, &action, &resource, &resourceID, &desc, &meta, &ip, &ua, &e.Timestamp); err != nil {
		return Event{}, err
	}
	e.Action = Action(action)
	e.UserID = userID.String
	e.Resource = resource.String
	e.ResourceID = resourceID.String
	e.Description = desc.String
	e.IPAddress = ip.String
	e.UserAgent = ua.String
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &e.Metadata); err != nil {
			return Event{}, fmt.Errorf("audit: decode metadata for %s: %w", e.ID, err)
		}
	}
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
