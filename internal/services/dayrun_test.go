package services

import (
	"context"
	"testing"
	"time"

	"ledger/internal/core"
)

func TestDayStartRunInjectsThenReportsBudget(t *testing.T) {
	repo := newTestRepo(t)
	sched := NewSalaryScheduler(repo)
	applier := NewDefaultsApplier(repo)
	monitor := NewBudgetMonitor(repo)
	runner := NewDayStartRunner(sched, applier, monitor, nil)
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

	if err := sched.SetSalary(ctx, 15, core.Money{Cents: 500000}, core.NewDate(2025, 1, 1)); err != nil {
		t.Fatalf("SetSalary: %v", err)
	}
	if _, err := applier.AddDefault(ctx, core.DailyDefault{
		Kind: core.Expense, Amount: core.Money{Cents: 300}, Category: "coffee",
	}); err != nil {
		t.Fatalf("AddDefault: %v", err)
	}
	if err := monitor.SetThreshold(ctx, core.Money{Cents: 100}); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}

	status, err := runner.Run(ctx, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Salary and the default both landed, and the budget check saw the
	// default's expense.
	if !status.IsOver {
		t.Error("status.IsOver = false, want over (300 > 100)")
	}
	if status.Current.Cents != 300 {
		t.Errorf("status current = %d, want 300", status.Current.Cents)
	}

	rows, err := repo.Queries().RecentTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows after day start = %d, want 2 (salary + default)", len(rows))
	}
}

func TestDayStartRunIdempotentSameDay(t *testing.T) {
	repo := newTestRepo(t)
	sched := NewSalaryScheduler(repo)
	applier := NewDefaultsApplier(repo)
	monitor := NewBudgetMonitor(repo)
	runner := NewDayStartRunner(sched, applier, monitor, nil)
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

	if err := sched.SetSalary(ctx, 15, core.Money{Cents: 500000}, core.NewDate(2025, 1, 1)); err != nil {
		t.Fatalf("SetSalary: %v", err)
	}
	if _, err := applier.AddDefault(ctx, core.DailyDefault{
		Kind: core.Expense, Amount: core.Money{Cents: 300}, Category: "coffee",
	}); err != nil {
		t.Fatalf("AddDefault: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := runner.Run(ctx, now); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}

	rows, err := repo.Queries().RecentTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows after repeated runs = %d, want 2", len(rows))
	}
}
