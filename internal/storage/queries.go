package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger/internal/core"
)

// ErrNotFound reports that a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same query set runs
// standalone or inside a caller-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// storageErr tags a store-level failure so callers can discriminate it with
// errors.Is(err, core.ErrStorage) while keeping the underlying message.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrStorage, op, err)
}

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (date, kind, amount_cents, category, description)
		 VALUES (?, ?, ?, ?, ?)`,
		t.Date.ISO(), string(t.Kind), t.Amount.Cents, t.Category, t.Description)
	if err != nil {
		return 0, storageErr("insert transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert transaction id", err)
	}
	return id, nil
}

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var (
		t       core.Transaction
		date    string
		kind    string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, date, kind, amount_cents, category, description
		 FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &date, &kind, &t.Amount.Cents, &t.Category, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, storageErr("get transaction", err)
	}
	t.Kind = core.Kind(kind)
	t.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, storageErr("get transaction date", err)
	}
	return t, nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete transaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete transaction rows", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

// RecentTransactions returns the newest rows first, most recent date on top.
func (q *Queries) RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, date, kind, amount_cents, category, description
		 FROM transactions ORDER BY date DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, storageErr("list recent transactions", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t    core.Transaction
			date string
			kind string
		)
		if err := rows.Scan(&t.ID, &date, &kind, &t.Amount.Cents, &t.Category, &t.Description); err != nil {
			return nil, storageErr("scan transaction", err)
		}
		t.Kind = core.Kind(kind)
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, storageErr("scan transaction date", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list recent transactions", err)
	}
	return out, nil
}

// SumByKindInMonth returns total cents for one kind within a YYYY-MM month,
// zero when no rows match.
func (q *Queries) SumByKindInMonth(ctx context.Context, kind core.Kind, month string) (int64, error) {
	var total sql.NullInt64
	err := q.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM transactions
		 WHERE kind = ? AND substr(date, 1, 7) = ?`,
		string(kind), month).Scan(&total)
	if err != nil {
		return 0, storageErr("sum by kind in month", err)
	}
	return total.Int64, nil
}

// HasSalaryIncome reports whether a salary-category income row exists in the
// given month. This is the scheduler's sole "already paid" signal.
func (q *Queries) HasSalaryIncome(ctx context.Context, month string) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions
		 WHERE kind = ? AND category = ? AND substr(date, 1, 7) = ?`,
		string(core.Income), core.CategorySalary, month).Scan(&n)
	if err != nil {
		return false, storageErr("check salary income", err)
	}
	return n > 0, nil
}

// HasTransactionOn reports whether a (date, kind, category) row already
// exists, the defaults applier's per-day dedup key.
func (q *Queries) HasTransactionOn(ctx context.Context, date core.Date, kind core.Kind, category string) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions
		 WHERE date = ? AND kind = ? AND category = ?`,
		date.ISO(), string(kind), category).Scan(&n)
	if err != nil {
		return false, storageErr("check existing transaction", err)
	}
	return n > 0, nil
}

// ActiveSalarySetting returns the single active setting, nil when none.
func (q *Queries) ActiveSalarySetting(ctx context.Context) (*core.SalarySetting, error) {
	var (
		s     core.SalarySetting
		start string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, payday, amount_cents, start_date, is_active
		 FROM salary_settings WHERE is_active = 1 ORDER BY id DESC LIMIT 1`).
		Scan(&s.ID, &s.Payday, &s.Amount.Cents, &start, &s.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get active salary setting", err)
	}
	if s.StartDate, err = core.ParseDate(start); err != nil {
		return nil, storageErr("get active salary setting date", err)
	}
	return &s, nil
}

func (q *Queries) DeactivateSalarySettings(ctx context.Context) error {
	if _, err := q.db.ExecContext(ctx,
		`UPDATE salary_settings SET is_active = 0 WHERE is_active = 1`); err != nil {
		return storageErr("deactivate salary settings", err)
	}
	return nil
}

func (q *Queries) InsertSalarySetting(ctx context.Context, s core.SalarySetting) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO salary_settings (payday, amount_cents, start_date, is_active)
		 VALUES (?, ?, ?, 1)`,
		s.Payday, s.Amount.Cents, s.StartDate.ISO())
	if err != nil {
		return 0, storageErr("insert salary setting", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert salary setting id", err)
	}
	return id, nil
}

// ListSalarySettings returns the full configuration history, newest first.
// Deactivated rows stay queryable.
func (q *Queries) ListSalarySettings(ctx context.Context) ([]core.SalarySetting, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, payday, amount_cents, start_date, is_active
		 FROM salary_settings ORDER BY id DESC`)
	if err != nil {
		return nil, storageErr("list salary settings", err)
	}
	defer rows.Close()

	var out []core.SalarySetting
	for rows.Next() {
		var (
			s     core.SalarySetting
			start string
		)
		if err := rows.Scan(&s.ID, &s.Payday, &s.Amount.Cents, &start, &s.Active); err != nil {
			return nil, storageErr("scan salary setting", err)
		}
		if s.StartDate, err = core.ParseDate(start); err != nil {
			return nil, storageErr("scan salary setting date", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list salary settings", err)
	}
	return out, nil
}

func (q *Queries) InsertDailyDefault(ctx context.Context, d core.DailyDefault) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO daily_defaults (kind, amount_cents, category, description, is_active)
		 VALUES (?, ?, ?, ?, 1)`,
		string(d.Kind), d.Amount.Cents, d.Category, d.Description)
	if err != nil {
		return 0, storageErr("insert daily default", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert daily default id", err)
	}
	return id, nil
}

// ActiveDailyDefaults returns active defaults in insertion order.
func (q *Queries) ActiveDailyDefaults(ctx context.Context) ([]core.DailyDefault, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, kind, amount_cents, category, description, is_active
		 FROM daily_defaults WHERE is_active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, storageErr("list daily defaults", err)
	}
	defer rows.Close()

	var out []core.DailyDefault
	for rows.Next() {
		var (
			d    core.DailyDefault
			kind string
		)
		if err := rows.Scan(&d.ID, &kind, &d.Amount.Cents, &d.Category, &d.Description, &d.Active); err != nil {
			return nil, storageErr("scan daily default", err)
		}
		d.Kind = core.Kind(kind)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list daily defaults", err)
	}
	return out, nil
}

// GetBudgetAlert returns the singleton alert row. A missing row reads as an
// unconfigured config, not an error.
func (q *Queries) GetBudgetAlert(ctx context.Context) (core.BudgetAlertConfig, error) {
	var (
		cfg    core.BudgetAlertConfig
		budget sql.NullInt64
		month  sql.NullString
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT monthly_budget_cents, last_alert_month FROM budget_alert WHERE id = 1`).
		Scan(&budget, &month)
	if errors.Is(err, sql.ErrNoRows) {
		return cfg, nil
	}
	if err != nil {
		return cfg, storageErr("get budget alert", err)
	}
	if budget.Valid {
		cfg.Budget = &core.Money{Cents: budget.Int64}
	}
	cfg.LastAlertMonth = month.String
	return cfg, nil
}

// UpsertBudgetThreshold sets the monthly threshold atomically without
// touching the last-alert watermark.
func (q *Queries) UpsertBudgetThreshold(ctx context.Context, cents int64) error {
	if _, err := q.db.ExecContext(ctx,
		`INSERT INTO budget_alert (id, monthly_budget_cents) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET monthly_budget_cents = excluded.monthly_budget_cents`,
		cents); err != nil {
		return storageErr("upsert budget threshold", err)
	}
	return nil
}

// SetLastAlertMonth advances the watermark. Months only move forward in wall
// time, so the value is monotonic by construction.
func (q *Queries) SetLastAlertMonth(ctx context.Context, month string) error {
	if _, err := q.db.ExecContext(ctx,
		`UPDATE budget_alert SET last_alert_month = ? WHERE id = 1`, month); err != nil {
		return storageErr("set last alert month", err)
	}
	return nil
}
