package services

import (
	"context"
	"log/slog"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
)

// DayStartRunner executes the day-start injection sequence: salary first,
// then daily defaults, then the budget check. The sequence must complete
// before any user-facing read so the scheduler's duplicate check and the
// summary both see today's state.
//
// Injection failures are logged and collected, never fatal: one failing
// default must not block the others or the budget check.
type DayStartRunner struct {
	scheduler  *SalaryScheduler
	applier    *DefaultsApplier
	monitor    *BudgetMonitor
	amqpClient *amqp.Client
}

func NewDayStartRunner(scheduler *SalaryScheduler, applier *DefaultsApplier, monitor *BudgetMonitor, amqpClient *amqp.Client) *DayStartRunner {
	return &DayStartRunner{
		scheduler:  scheduler,
		applier:    applier,
		monitor:    monitor,
		amqpClient: amqpClient,
	}
}

// Run performs one day-start pass for the day containing now and returns the
// resulting budget status. Safe to call multiple times per day.
func (r *DayStartRunner) Run(ctx context.Context, now time.Time) (core.BudgetStatus, error) {
	today := core.DateOf(now)

	salaryID, deposited, err := r.scheduler.MaybeDepositSalary(ctx, today)
	if err != nil {
		slog.ErrorContext(ctx, "Salary injection failed", "date", today.ISO(), "error", err)
	} else if deposited {
		r.publishRecorded(ctx, salaryID)
	}

	defaultIDs, err := r.applier.ApplyDefaults(ctx, today)
	if err != nil {
		slog.ErrorContext(ctx, "Some daily defaults failed", "date", today.ISO(), "error", err)
	}
	for _, id := range defaultIDs {
		r.publishRecorded(ctx, id)
	}

	status, err := r.monitor.Status(ctx, now)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	if status.IsOver {
		r.publishAlert(ctx, status)
	}
	return status, nil
}

func (r *DayStartRunner) publishRecorded(ctx context.Context, id int64) {
	if r.amqpClient == nil {
		return
	}
	if err := r.amqpClient.PublishTransactionRecorded(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish recorded message", "id", id, "error", err)
	}
}

func (r *DayStartRunner) publishAlert(ctx context.Context, status core.BudgetStatus) {
	if r.amqpClient == nil {
		return
	}
	if err := r.amqpClient.PublishBudgetAlert(ctx, status); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget alert", "month", status.Month, "error", err)
	}
}
