package services

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/core"
)

func TestMaybeDepositSalaryOnPayday(t *testing.T) {
	repo := newTestRepo(t)
	sched := NewSalaryScheduler(repo)
	ctx := context.Background()

	if err := sched.SetSalary(ctx, 15, core.Money{Cents: 500000}, core.NewDate(2025, 1, 1)); err != nil {
		t.Fatalf("SetSalary: %v", err)
	}

	id, deposited, err := sched.MaybeDepositSalary(ctx, core.NewDate(2025, 3, 15))
	if err != nil {
		t.Fatalf("MaybeDepositSalary: %v", err)
	}
	if !deposited {
		t.Fatal("deposited = false on payday with no prior deposit")
	}

	tx, err := repo.Queries().GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if tx.Kind != core.Income || tx.Category != core.CategorySalary ||
		tx.Amount.Cents != 500000 || tx.Description != SalaryDescription {
		t.Errorf("deposit row = %+v", tx)
	}
	if tx.Date.ISO() != "2025-03-15" {
		t.Errorf("deposit date = %s, want 2025-03-15", tx.Date.ISO())
	}
}

func TestMaybeDepositSalaryIdempotentSameDay(t *testing.T) {
	repo := newTestRepo(t)
	sched := NewSalaryScheduler(repo)
	ctx := context.Background()
	today := core.NewDate(2025, 3, 15)

	if err := sched.SetSalary(ctx, 15, core.Money{Cents: 500000}, core.NewDate(2025, 1, 1)); err != nil {
		t.Fatalf("SetSalary: %v", err)
	}

	if _, deposited, err := sched.MaybeDepositSalary(ctx, today); err != nil || !deposited {
		t.Fatalf("first call: deposited=%v err=%v", deposited, err)
	}
	if _, deposited, err := sched.MaybeDepositSalary(ctx, today); err != nil {
		t.Fatalf("second call: %v", err)
	} else if deposited {
		t.Error("second call deposited again")
	}

	rows, err := repo.Queries().RecentTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("salary rows = %d, want exactly 1", len(rows))
	}
}

func TestMaybeDepositSalaryOffPayday(t *testing.T) {
	repo := newTestRepo(t)
	sched := NewSalaryScheduler(repo)
	ctx := context.Background()

	if err := sched.SetSalary(ctx, 31, core.Money{Cents: 100000}, core.NewDate(2025, 1, 1)); err != nil {
		t.Fatalf("SetSalary: %v", err)
	}

	// February has no 31st; the deposit never fires that month.
	for day := 1; day <= 28; day++ {
		if _, deposited, err := sched.MaybeDepositSalary(ctx, core.NewDate(2025, 2, day)); err != nil {
			t.Fatalf("day %d: %v", day, err)
		} else if deposited {
			t.Fatalf("day %d: deposited off payday", day)
		}
	}
}

func TestMaybeDepositSalaryNoSetting(t *testing.T) {
	repo := newTestRepo(t)
	sched := NewSalaryScheduler(repo)

	if _, deposited, err := sched.MaybeDepositSalary(context.Background(), core.NewDate(2025, 3, 15)); err != nil {
		t.Fatalf("MaybeDepositSalary: %v", err)
	} else if deposited {
		t.Error("deposited with no configured salary")
	}
}

func TestSetSalaryValidation(t *testing.T) {
	repo := newTestRepo(t)
	sched := NewSalaryScheduler(repo)
	ctx := context.Background()
	start := core.NewDate(2025, 1, 1)

	if err := sched.SetSalary(ctx, 0, core.Money{Cents: 100}, start); !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("payday 0 error = %v, want ErrConfiguration", err)
	}
	if err := sched.SetSalary(ctx, 15, core.Money{Cents: 0}, start); !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("zero amount error = %v, want ErrConfiguration", err)
	}
}

func TestSetSalaryKeepsHistoryAndNoRetroactiveAdjustment(t *testing.T) {
	repo := newTestRepo(t)
	sched := NewSalaryScheduler(repo)
	ctx := context.Background()
	today := core.NewDate(2025, 3, 15)

	if err := sched.SetSalary(ctx, 15, core.Money{Cents: 500000}, core.NewDate(2025, 1, 1)); err != nil {
		t.Fatalf("SetSalary: %v", err)
	}
	id, deposited, err := sched.MaybeDepositSalary(ctx, today)
	if err != nil || !deposited {
		t.Fatalf("deposit: deposited=%v err=%v", deposited, err)
	}

	// Raise the salary mid-month, after this month's deposit already fired.
	if err := sched.SetSalary(ctx, 15, core.Money{Cents: 600000}, core.NewDate(2025, 3, 16)); err != nil {
		t.Fatalf("SetSalary: %v", err)
	}

	// Re-running the scheduler must neither duplicate nor adjust.
	if _, again, err := sched.MaybeDepositSalary(ctx, today); err != nil {
		t.Fatalf("MaybeDepositSalary: %v", err)
	} else if again {
		t.Error("deposit fired again after mid-month config change")
	}
	tx, err := repo.Queries().GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if tx.Amount.Cents != 500000 {
		t.Errorf("deposit amount = %d, want untouched 500000", tx.Amount.Cents)
	}

	history, err := repo.Queries().ListSalarySettings(ctx)
	if err != nil {
		t.Fatalf("ListSalarySettings: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}

	active, err := sched.ActiveSetting(ctx)
	if err != nil {
		t.Fatalf("ActiveSetting: %v", err)
	}
	if active == nil || active.Amount.Cents != 600000 {
		t.Errorf("active = %+v, want new 600000 rate", active)
	}
}
