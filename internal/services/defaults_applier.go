package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// DefaultsApplier replays the configured daily defaults once per calendar
// day, keyed by (date, kind, category). Two configured defaults sharing a
// kind+category pair will only ever produce one transaction per day; that is
// a documented limitation of the dedup key, not something the applier papers
// over.
type DefaultsApplier struct {
	repo *storage.SQLiteRepository
}

func NewDefaultsApplier(repo *storage.SQLiteRepository) *DefaultsApplier {
	return &DefaultsApplier{repo: repo}
}

// AddDefault registers a new recurring entry.
func (a *DefaultsApplier) AddDefault(ctx context.Context, d core.DailyDefault) (int64, error) {
	d.Category = core.NormalizeCategory(d.Category)
	if err := d.Validate(); err != nil {
		return 0, err
	}
	id, err := a.repo.Queries().InsertDailyDefault(ctx, d)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Daily default added",
		"id", id,
		"kind", d.Kind,
		"amount_cents", d.Amount.Cents,
		"category", d.Category)
	return id, nil
}

// ActiveDefaults lists the configured recurring entries, insertion order.
func (a *DefaultsApplier) ActiveDefaults(ctx context.Context) ([]core.DailyDefault, error) {
	return a.repo.Queries().ActiveDailyDefaults(ctx)
}

// ApplyDefaults injects each active default that has no matching transaction
// today. Defaults are evaluated independently, each insert its own unit of
// work: one failure is collected and the rest still apply. Idempotent per
// day.
//
// Returns the inserted transaction ids alongside the joined collection of
// per-default errors, if any.
func (a *DefaultsApplier) ApplyDefaults(ctx context.Context, today core.Date) ([]int64, error) {
	q := a.repo.Queries()

	defaults, err := q.ActiveDailyDefaults(ctx)
	if err != nil {
		return nil, err
	}

	var (
		inserted []int64
		errs     []error
	)
	for _, d := range defaults {
		exists, err := q.HasTransactionOn(ctx, today, d.Kind, d.Category)
		if err != nil {
			errs = append(errs, fmt.Errorf("default %d: %w", d.ID, err))
			continue
		}
		if exists {
			continue
		}

		tx, err := ValidateRecord(map[string]string{
			FieldDate:        today.ISO(),
			FieldKind:        string(d.Kind),
			FieldAmount:      d.Amount.String(),
			FieldCategory:    d.Category,
			FieldDescription: d.Description,
		}, today)
		if err != nil {
			errs = append(errs, fmt.Errorf("default %d: %w", d.ID, err))
			continue
		}

		id, err := q.InsertTransaction(ctx, tx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to apply daily default",
				"default_id", d.ID,
				"category", d.Category,
				"error", err)
			errs = append(errs, fmt.Errorf("default %d: %w", d.ID, err))
			continue
		}
		inserted = append(inserted, id)
	}

	if len(inserted) > 0 {
		slog.InfoContext(ctx, "Daily defaults applied",
			"date", today.ISO(),
			"applied", len(inserted),
			"total_active", len(defaults))
	}
	return inserted, errors.Join(errs...)
}
