package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestValidateAndAddReflectedInSummary(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewLedgerService(repo, nil)
	ctx := context.Background()
	month := core.MonthOf(time.Now())

	if _, err := svc.ValidateAndAdd(ctx, map[string]string{
		"date": "", "kind": "income", "amount": "3000.00", "category": "freelance",
	}); err != nil {
		t.Fatalf("ValidateAndAdd income: %v", err)
	}
	if _, err := svc.ValidateAndAdd(ctx, map[string]string{
		"date": "", "kind": "EXPENSE", "amount": "1234.56",
	}); err != nil {
		t.Fatalf("ValidateAndAdd expense: %v", err)
	}

	sum, err := svc.Summary(ctx, month)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Income.Cents != 300000 {
		t.Errorf("income = %d, want 300000", sum.Income.Cents)
	}
	if sum.Expense.Cents != 123456 {
		t.Errorf("expense = %d, want 123456", sum.Expense.Cents)
	}
	if sum.Balance.Cents != 300000-123456 {
		t.Errorf("balance = %d, want %d", sum.Balance.Cents, 300000-123456)
	}
}

func TestValidateAndAddRejectionWritesNothing(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewLedgerService(repo, nil)
	ctx := context.Background()

	_, err := svc.ValidateAndAdd(ctx, map[string]string{
		"date": "", "kind": "expense", "amount": "-5",
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("ValidateAndAdd error = %v, want ErrInvalidAmount", err)
	}

	rows, err := svc.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows after rejected add = %d, want 0", len(rows))
	}
}

func TestSummaryEmptyMonthIsZero(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewLedgerService(repo, nil)

	sum, err := svc.Summary(context.Background(), "2020-01")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Income.Cents != 0 || sum.Expense.Cents != 0 || sum.Balance.Cents != 0 {
		t.Errorf("empty month summary = %+v, want zeros", sum)
	}
}

func TestSummaryRejectsBadMonthToken(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewLedgerService(repo, nil)

	if _, err := svc.Summary(context.Background(), "March 2025"); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("Summary error = %v, want ErrInvalidDate", err)
	}
}

func TestRecentOrderAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewLedgerService(repo, nil)
	ctx := context.Background()

	if _, err := svc.ValidateAndAdd(ctx, map[string]string{
		"date": "2025-03-01", "kind": "expense", "amount": "1",
	}); err != nil {
		t.Fatalf("ValidateAndAdd: %v", err)
	}
	newest, err := svc.ValidateAndAdd(ctx, map[string]string{
		"date": "2025-03-20", "kind": "expense", "amount": "2",
	})
	if err != nil {
		t.Fatalf("ValidateAndAdd: %v", err)
	}

	rows, err := svc.Recent(ctx, 0) // zero limit falls back to the default
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != newest {
		t.Fatalf("recent rows = %+v, want newest first", rows)
	}

	if err := svc.Delete(ctx, newest); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, newest); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}
