package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/sheets"
	"ledger/internal/storage"
)

// ExportWorker mirrors recorded transactions and fired budget alerts
// to an external spreadsheet.
type ExportWorker struct {
	storage  *storage.SQLiteRepository
	exporter sheets.LedgerExporter
	alerts   sheets.AlertSink
}

func NewExportWorker(storage *storage.SQLiteRepository, exporter sheets.LedgerExporter, alerts sheets.AlertSink) *ExportWorker {
	return &ExportWorker{
		storage:  storage,
		exporter: exporter,
		alerts:   alerts,
	}
}

// HandleRecorded processes a single recorded-transaction message from AMQP.
// The message carries only the id; the row is re-read so the export always
// reflects what the ledger actually stored.
func (w *ExportWorker) HandleRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	slog.InfoContext(ctx, "Processing recorded transaction message", "id", msg.ID)

	tx, err := w.storage.Queries().GetTransaction(ctx, msg.ID)
	if err != nil {
		// A row deleted between publish and consume is not worth a requeue.
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction no longer exists, skipping export", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if w.exporter == nil {
		slog.WarnContext(ctx, "No ledger exporter configured, skipping export", "id", msg.ID)
		return nil
	}

	ref, err := w.exporter.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("append transaction to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported transaction",
		"id", msg.ID,
		"sheets_ref", ref,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)

	return nil
}

// HandleAlert processes a single budget-alert message from AMQP.
func (w *ExportWorker) HandleAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	slog.InfoContext(ctx, "Processing budget alert message",
		"month", msg.Month,
		"budget_cents", msg.BudgetCents,
		"spend_cents", msg.SpendCents)

	if w.alerts == nil {
		slog.WarnContext(ctx, "No alert sink configured, skipping alert export", "month", msg.Month)
		return nil
	}

	status := core.BudgetStatus{
		IsOver:  true,
		Budget:  core.Money{Cents: msg.BudgetCents},
		Current: core.Money{Cents: msg.SpendCents},
		Month:   msg.Month,
	}

	ref, err := w.alerts.AppendAlert(ctx, status)
	if err != nil {
		return fmt.Errorf("append alert to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported budget alert",
		"month", msg.Month,
		"sheets_ref", ref)

	return nil
}
