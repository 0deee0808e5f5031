package invoices

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var invoiceCols = []string{"id", "number", "branch_id", "patient_name", "description", "amount_minor", "currency", "status", "issued_by", "paid_by", "paid_at", "created_at", "updated_at"}

func TestPostgresRepo_MarkPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = 'pending'")).
		WithArgs("i1", "acct", at).
		WillReturnRows(sqlmock.NewRows(invoiceCols).
			AddRow("i1", "INV-1", "b1", "Jane", "", 5000, "USD", "paid", "rec", "acct", at, at, at))

	inv, err := NewPostgresRepo(db).MarkPaid(context.Background(), "i1", "acct", at)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if inv.Status != StatusPaid || inv.PaidAt == nil || !inv.PaidAt.Equal(at) {
		t.Fatalf("unexpected invoice: %+v", inv)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepo_MarkPaidAlreadyPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("UPDATE invoices").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE id = $1")).
		WithArgs("i1").
		WillReturnRows(sqlmock.NewRows(invoiceCols).
			AddRow("i1", "INV-1", "b1", "Jane", "", 5000, "USD", "paid", "rec", "acct", at, at, at))

	_, err = NewPostgresRepo(db).MarkPaid(context.Background(), "i1", "acct", at)
	if !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepo_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT status, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "sum"}).
			AddRow("paid", 2, 7000).
			AddRow("pending", 1, 1500))

	st, err := NewPostgresRepo(db).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 3 || st.RevenueMinor != 7000 || st.PendingMinor != 1500 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}
