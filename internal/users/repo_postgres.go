package users

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"clinic-platform/internal/store"
)

// PostgresRepo reads and writes the users table. The email column carries a
// unique index; branch_id references branches(id).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const userColumns = `id, email, name, role, branch_id, password_hash, is_active, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, u User) error {
	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	_, err := r.db.ExecContext(ctx, q,
		u.ID,
		u.Email,
		u.Name,
		u.Role,
		nullString(u.BranchID),
		u.PasswordHash,
		u.IsActive,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter, page store.PageRequest) ([]User, int64, error) {
	page = page.Normalize()
	var (
		conds []string
		args  []any
	)
	if f.Role != "" {
		args = append(args, f.Role)
		conds = append(conds, "role = $"+strconv.Itoa(len(args)))
	}
	if f.BranchID != "" {
		args = append(args, f.BranchID)
		conds = append(conds, "branch_id = $"+strconv.Itoa(len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		conds = append(conds, "is_active = $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.Limit, page.Offset())
	q := `SELECT ` + userColumns + ` FROM users` + where +
		` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]User, 0, page.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, u User) error {
	const q = `
UPDATE users
SET name = $2, role = $3, branch_id = $4, password_hash = $5, is_active = $6, updated_at = $7
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		u.ID,
		u.Name,
		u.Role,
		nullString(u.BranchID),
		u.PasswordHash,
		u.IsActive,
		u.UpdatedAt,
	)
	return affectedOne(res, err)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return affectedOne(res, err)
}

func (r *PostgresRepo) Counts(ctx context.Context) (Counts, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT role, COUNT(*), COUNT(*) FILTER (WHERE is_active)
FROM users
GROUP BY role
`)
	if err != nil {
		return Counts{}, err
	}
	defer rows.Close()

	c := Counts{ByRole: map[string]int64{}}
	for rows.Next() {
		var (
			role          string
			total, active int64
		)
		if err := rows.Scan(&role, &total, &active); err != nil {
			return Counts{}, err
		}
		c.ByRole[role] = total
		c.Total += total
		c.Active += active
	}
	return c, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepo) one(ctx context.Context, q string, arg any) (User, error) {
	return scanUser(r.db.QueryRowContext(ctx, q, arg))
}

func scanUser(row rowScanner) (User, error) {
	var (
		u        User
		branchID sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &branchID, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, store.ErrNotFound
		}
		return User{}, err
	}
	u.BranchID = branchID.String
	return u, nil
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

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
