package branches

import (
	"context"
	"database/sql"
	"errors"

	"clinic-platform/internal/store"
)

// PostgresRepo reads and writes the branches table (unique index on code).
// Deleting a branch still referenced by users or invoices fails with a
// foreign-key violation, which the classifier reports as 400.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const branchColumns = `id, code, name, address, phone, is_active, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, b Branch) error {
	const q = `INSERT INTO branches (` + branchColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.ExecContext(ctx, q, b.ID, b.Code, b.Name, b.Address, b.Phone, b.IsActive, b.CreatedAt, b.UpdatedAt)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Branch, error) {
	var b Branch
	err := r.db.QueryRowContext(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id).Scan(
		&b.ID, &b.Code, &b.Name, &b.Address, &b.Phone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Branch{}, store.ErrNotFound
		}
		return Branch{}, err
	}
	return b, nil
}

func (r *PostgresRepo) List(ctx context.Context, activeOnly bool, page store.PageRequest) ([]Branch, int64, error) {
	page = page.Normalize()
	where := ""
	if activeOnly {
		where = " WHERE is_active"
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM branches`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+branchColumns+` FROM branches`+where+` ORDER BY name LIMIT $1 OFFSET $2`, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Branch, 0, page.Limit)
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Code, &b.Name, &b.Address, &b.Phone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, b Branch) error {
	const q = `
UPDATE branches
SET name = $2, address = $3, phone = $4, is_active = $5, updated_at = $6
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, b.ID, b.Name, b.Address, b.Phone, b.IsActive, b.UpdatedAt)
	return affectedOne(res, err)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id)
	return affectedOne(res, err)
}

func (r *PostgresRepo) Count(ctx context.Context) (int64, int64, error) {
	var total, active int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM branches`).Scan(&total, &active)
	return total, active, err
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
