package services

import (
	"context"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// SalaryDescription is the description auto-injected deposits carry.
const SalaryDescription = "monthly salary"

// SalaryScheduler injects the monthly salary deposit. MaybeDepositSalary is
// idempotent: the category="salary" income row is the "already paid this
// month" signal, so repeated invocations on the payday insert exactly once.
type SalaryScheduler struct {
	repo *storage.SQLiteRepository
}

func NewSalaryScheduler(repo *storage.SQLiteRepository) *SalaryScheduler {
	return &SalaryScheduler{repo: repo}
}

// SetSalary replaces the active setting with deactivate-then-insert so prior
// configurations stay queryable as history. A deposit already made this
// month is never adjusted retroactively; the new rate applies from the next
// payday.
func (s *SalaryScheduler) SetSalary(ctx context.Context, payday int, amount core.Money, startDate core.Date) error {
	setting := core.SalarySetting{
		Payday:    payday,
		Amount:    amount,
		StartDate: startDate,
		Active:    true,
	}
	if err := setting.Validate(); err != nil {
		return err
	}

	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := q.DeactivateSalarySettings(ctx); err != nil {
			return err
		}
		_, err := q.InsertSalarySetting(ctx, setting)
		return err
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Salary setting replaced",
		"payday", payday,
		"amount_cents", amount.Cents,
		"start_date", startDate.ISO())
	return nil
}

// ActiveSetting returns the currently effective configuration, nil when
// salary has never been configured.
func (s *SalaryScheduler) ActiveSetting(ctx context.Context) (*core.SalarySetting, error) {
	return s.repo.Queries().ActiveSalarySetting(ctx)
}

// MaybeDepositSalary inserts this month's deposit when today is the payday
// and no salary income exists yet this month. The check and the insert share
// one transaction, so a concurrent-free caller observes either both or
// neither. Months shorter than the payday simply never fire; there is no
// end-of-month roll-forward.
//
// Returns the inserted transaction id and true when a deposit was made.
func (s *SalaryScheduler) MaybeDepositSalary(ctx context.Context, today core.Date) (int64, bool, error) {
	var (
		insertedID int64
		deposited  bool
	)

	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		active, err := q.ActiveSalarySetting(ctx)
		if err != nil {
			return err
		}
		if active == nil {
			return nil
		}
		if active.Payday != today.Day() {
			return nil
		}

		paid, err := q.HasSalaryIncome(ctx, today.Month())
		if err != nil {
			return err
		}
		if paid {
			slog.DebugContext(ctx, "Salary already deposited this month", "month", today.Month())
			return nil
		}

		// Programmatic convention, same path a manual insert takes.
		tx, err := ValidateRecord(map[string]string{
			FieldDate:        today.ISO(),
			FieldKind:        string(core.Income),
			FieldAmount:      active.Amount.String(),
			FieldCategory:    core.CategorySalary,
			FieldDescription: SalaryDescription,
		}, today)
		if err != nil {
			return err
		}

		if insertedID, err = q.InsertTransaction(ctx, tx); err != nil {
			return err
		}
		deposited = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	if deposited {
		slog.InfoContext(ctx, "Salary deposited",
			"id", insertedID,
			"date", today.ISO(),
			"month", today.Month())
	}
	return insertedID, deposited, nil
}
