package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/storage"
)

// DefaultRecentLimit caps the recent-transactions listing when the caller
// does not ask for a specific size.
const DefaultRecentLimit = 20

// LedgerService orchestrates user-originated transaction writes and reads.
// Writes land in SQLite first; export messages are published best-effort and
// never fail the operation.
type LedgerService struct {
	repo       *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewLedgerService(repo *storage.SQLiteRepository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		repo:       repo,
		amqpClient: amqpClient,
	}
}

// ValidateAndAdd validates a candidate record (programmatic convention) and
// inserts it as one unit of work. Validation failures leave no state behind.
func (s *LedgerService) ValidateAndAdd(ctx context.Context, fields map[string]string) (int64, error) {
	tx, err := ValidateRecord(fields, core.DateOf(time.Now()))
	if err != nil {
		return 0, err
	}

	id, err := s.repo.Queries().InsertTransaction(ctx, tx)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", id,
		"date", tx.Date.ISO(),
		"kind", tx.Kind,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)

	s.publishRecorded(ctx, id)
	return id, nil
}

// AddValidated inserts an already-validated transaction. Scheduler and
// applier use this after going through ValidateRecord themselves; the caller
// decides whether q is auto-committing or part of a shared transaction.
func (s *LedgerService) AddValidated(ctx context.Context, q *storage.Queries, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	return q.InsertTransaction(ctx, tx)
}

// Summary aggregates one calendar month; an empty month means the current
// one. Pure read, zero totals when nothing matches.
func (s *LedgerService) Summary(ctx context.Context, month string) (core.MonthSummary, error) {
	if month == "" {
		month = core.MonthOf(time.Now())
	}
	if !core.ValidMonthToken(month) {
		return core.MonthSummary{}, fmt.Errorf("%w: month %q", core.ErrInvalidDate, month)
	}

	q := s.repo.Queries()
	income, err := q.SumByKindInMonth(ctx, core.Income, month)
	if err != nil {
		return core.MonthSummary{}, err
	}
	expense, err := q.SumByKindInMonth(ctx, core.Expense, month)
	if err != nil {
		return core.MonthSummary{}, err
	}

	return core.MonthSummary{
		Month:   month,
		Income:  core.Money{Cents: income},
		Expense: core.Money{Cents: expense},
		Balance: core.Money{Cents: income - expense},
	}, nil
}

// Recent lists the newest transactions for display.
func (s *LedgerService) Recent(ctx context.Context, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.repo.Queries().RecentTransactions(ctx, limit)
}

// Delete removes one transaction by explicit user action.
func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Queries().DeleteTransaction(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// PublishRecorded announces a committed transaction to the export queue.
// Nil-safe and best-effort: a publish failure is logged, never surfaced.
func (s *LedgerService) PublishRecorded(ctx context.Context, id int64) {
	s.publishRecorded(ctx, id)
}

func (s *LedgerService) publishRecorded(ctx context.Context, id int64) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishTransactionRecorded(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish recorded message", "id", id, "error", err)
	}
}

// Close releases the service's storage and broker handles.
func (s *LedgerService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
