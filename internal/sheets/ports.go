package sheets

import (
	"context"

	"ledger/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerExporter appends recorded transactions to an external sheet.
	LedgerExporter interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// AlertSink records fired budget alerts externally.
	AlertSink interface {
		AppendAlert(ctx context.Context, status core.BudgetStatus) (rowRef string, err error)
	}
)
