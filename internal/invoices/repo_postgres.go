package invoices

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"clinic-platform/internal/store"
)

// PostgresRepo reads and writes the invoices table: unique index on number,
// branch_id REFERENCES branches(id), CHECK (amount_minor > 0).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const invoiceColumns = `id, number, branch_id, patient_name, description, amount_minor, currency, status, issued_by, paid_by, paid_at, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, inv Invoice) error {
	const q = `
INSERT INTO invoices (` + invoiceColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`
	_, err := r.db.ExecContext(ctx, q,
		inv.ID,
		inv.Number,
		inv.BranchID,
		inv.PatientName,
		inv.Description,
		inv.AmountMinor,
		inv.Currency,
		string(inv.Status),
		inv.IssuedBy,
		sql.NullString{String: inv.PaidBy, Valid: inv.PaidBy != ""},
		inv.PaidAt,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Invoice{}, store.ErrNotFound
	}
	return inv, err
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter, page store.PageRequest) ([]Invoice, int64, error) {
	page = page.Normalize()
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, cond+" = $"+strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}
	if f.BranchID != "" {
		add("branch_id", f.BranchID)
	}
	if f.IssuedBy != "" {
		add("issued_by", f.IssuedBy)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.Limit, page.Offset())
	q := `SELECT ` + invoiceColumns + ` FROM invoices` + where +
		` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Invoice, 0, page.Limit)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}

// MarkPaid relies on the status predicate so two concurrent payments cannot
// both succeed.
func (r *PostgresRepo) MarkPaid(ctx context.Context, id, paidBy string, at time.Time) (Invoice, error) {
	const q = `
UPDATE invoices
SET status = 'paid', paid_by = $2, paid_at = $3, updated_at = $3
WHERE id = $1 AND status = 'pending'
RETURNING ` + invoiceColumns
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, q, id, paidBy, at))
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Invoice{}, err
	}
	if _, err := r.Get(ctx, id); err != nil {
		return Invoice{}, err
	}
	return Invoice{}, ErrNotPending
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
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

func (r *PostgresRepo) Stats(ctx context.Context) (Stats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*), COALESCE(SUM(amount_minor), 0) FROM invoices GROUP BY status`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	st := Stats{ByStatus: map[Status]int64{}}
	for rows.Next() {
		var (
			status     string
			count, sum int64
		)
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return Stats{}, err
		}
		st.Total += count
		st.ByStatus[Status(status)] = count
		switch Status(status) {
		case StatusPaid:
			st.RevenueMinor = sum
		case StatusPending:
			st.PendingMinor = sum
		}
	}
	return st, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (Invoice, error) {
	var (
		inv    Invoice
		status string
		paidBy sql.NullString
		paidAt sql.NullTime
	)
	if err := row.Scan(
		&inv.ID,
		&inv.Number,
		&inv.BranchID,
		&inv.PatientName,
		&inv.Description,
		&inv.AmountMinor,
		&inv.Currency,
		&status,
		&inv.IssuedBy,
		&paidBy,
		&paidAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	); err != nil {
		return Invoice{}, err
	}
	inv.Status = Status(status)
	inv.PaidBy = paidBy.String
	if paidAt.Valid {
		t := paidAt.Time
		inv.PaidAt = &t
	}
	return inv, nil
}
