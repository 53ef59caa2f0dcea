package services

import (
	"context"
	"testing"

	"ledger/internal/core"
)

func TestApplyDefaultsIdempotentPerDay(t *testing.T) {
	repo := newTestRepo(t)
	applier := NewDefaultsApplier(repo)
	ctx := context.Background()
	today := core.NewDate(2025, 3, 15)

	for _, d := range []core.DailyDefault{
		{Kind: core.Expense, Amount: core.Money{Cents: 300}, Category: "coffee"},
		{Kind: core.Expense, Amount: core.Money{Cents: 1500}, Category: "commute", Description: "metro pass"},
		{Kind: core.Income, Amount: core.Money{Cents: 2000}, Category: "allowance"},
	} {
		if _, err := applier.AddDefault(ctx, d); err != nil {
			t.Fatalf("AddDefault: %v", err)
		}
	}

	first, err := applier.ApplyDefaults(ctx, today)
	if err != nil {
		t.Fatalf("first ApplyDefaults: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("first run inserted %d, want 3", len(first))
	}

	second, err := applier.ApplyDefaults(ctx, today)
	if err != nil {
		t.Fatalf("second ApplyDefaults: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second run inserted %d, want 0", len(second))
	}

	rows, err := repo.Queries().RecentTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("total rows = %d, want 3", len(rows))
	}
}

func TestApplyDefaultsNewDayInjectsAgain(t *testing.T) {
	repo := newTestRepo(t)
	applier := NewDefaultsApplier(repo)
	ctx := context.Background()

	if _, err := applier.AddDefault(ctx, core.DailyDefault{
		Kind: core.Expense, Amount: core.Money{Cents: 300}, Category: "coffee",
	}); err != nil {
		t.Fatalf("AddDefault: %v", err)
	}

	if ids, err := applier.ApplyDefaults(ctx, core.NewDate(2025, 3, 15)); err != nil || len(ids) != 1 {
		t.Fatalf("day one: ids=%v err=%v", ids, err)
	}
	if ids, err := applier.ApplyDefaults(ctx, core.NewDate(2025, 3, 16)); err != nil || len(ids) != 1 {
		t.Fatalf("day two: ids=%v err=%v", ids, err)
	}
}

func TestApplyDefaultsSkipsManuallyCoveredPair(t *testing.T) {
	repo := newTestRepo(t)
	applier := NewDefaultsApplier(repo)
	ctx := context.Background()
	today := core.NewDate(2025, 3, 15)

	if _, err := applier.AddDefault(ctx, core.DailyDefault{
		Kind: core.Expense, Amount: core.Money{Cents: 300}, Category: "coffee",
	}); err != nil {
		t.Fatalf("AddDefault: %v", err)
	}

	// A same-day manual entry with the same (kind, category) already exists.
	if _, err := repo.Queries().InsertTransaction(ctx, core.Transaction{
		Date: today, Kind: core.Expense, Amount: core.Money{Cents: 450}, Category: "coffee",
	}); err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	ids, err := applier.ApplyDefaults(ctx, today)
	if err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("inserted %d, want 0 (pair already covered)", len(ids))
	}
}

func TestApplyDefaultsNoDefaultsNoop(t *testing.T) {
	repo := newTestRepo(t)
	applier := NewDefaultsApplier(repo)

	ids, err := applier.ApplyDefaults(context.Background(), core.NewDate(2025, 3, 15))
	if err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("inserted %d on empty config, want 0", len(ids))
	}
}
