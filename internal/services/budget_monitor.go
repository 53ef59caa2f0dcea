package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// BudgetMonitor tracks month-to-date expense against a configured threshold.
// Status deliberately couples the read with arming the watermark: the first
// over-budget read of a month reports the overrun and advances
// last-alert-month in the same transaction, so every later read that month
// stays quiet even while spend remains over budget.
type BudgetMonitor struct {
	repo *storage.SQLiteRepository
}

func NewBudgetMonitor(repo *storage.SQLiteRepository) *BudgetMonitor {
	return &BudgetMonitor{repo: repo}
}

// SetThreshold upserts the singleton threshold row. The last-alert watermark
// is left untouched.
func (m *BudgetMonitor) SetThreshold(ctx context.Context, amount core.Money) error {
	if amount.Cents <= 0 {
		return fmt.Errorf("%w: budget threshold must be positive", core.ErrConfiguration)
	}
	if err := m.repo.Queries().UpsertBudgetThreshold(ctx, amount.Cents); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Budget threshold set", "amount_cents", amount.Cents)
	return nil
}

// Config returns the raw singleton row for display.
func (m *BudgetMonitor) Config(ctx context.Context) (core.BudgetAlertConfig, error) {
	return m.repo.Queries().GetBudgetAlert(ctx)
}

// Status computes the alert state for the month containing now. Not a pure
// query: an over-budget result advances the watermark before returning.
func (m *BudgetMonitor) Status(ctx context.Context, now time.Time) (core.BudgetStatus, error) {
	month := core.MonthOf(now)
	status := core.BudgetStatus{Month: month}

	err := m.repo.InTx(ctx, func(q *storage.Queries) error {
		cfg, err := q.GetBudgetAlert(ctx)
		if err != nil {
			return err
		}
		if cfg.Budget == nil {
			return nil
		}
		status.Budget = *cfg.Budget

		spend, err := q.SumByKindInMonth(ctx, core.Expense, month)
		if err != nil {
			return err
		}
		status.Current = core.Money{Cents: spend}

		if cfg.LastAlertMonth == month || spend <= cfg.Budget.Cents {
			return nil
		}

		// Notify once per month: arm before returning so the next read
		// this month reports quiet.
		if err := q.SetLastAlertMonth(ctx, month); err != nil {
			return err
		}
		status.IsOver = true
		return nil
	})
	if err != nil {
		return core.BudgetStatus{}, err
	}

	if status.IsOver {
		slog.WarnContext(ctx, "Budget exceeded",
			"month", month,
			"budget_cents", status.Budget.Cents,
			"spend_cents", status.Current.Cents)
	}
	return status, nil
}
