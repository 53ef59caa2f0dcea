package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting dayrun-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPExportQueue, cfg.AMQPAlertQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - injected rows and alerts will be published")
		}
	} else {
		logger.Info("AMQP disabled - injected rows and alerts stay local")
	}

	scheduler := services.NewSalaryScheduler(repo)
	applier := services.NewDefaultsApplier(repo)
	monitor := services.NewBudgetMonitor(repo)
	runner := services.NewDayStartRunner(scheduler, applier, monitor, amqpClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Day start runner configured",
		"interval", cfg.DayRunInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	// The run is idempotent per calendar day, so a short interval only costs
	// a few reads; it exists to catch the day rollover promptly.
	ticker := time.NewTicker(cfg.DayRunInterval)
	defer ticker.Stop()

	logger.Info("Running initial day start pass...")
	if status, err := runner.Run(ctx, time.Now()); err != nil {
		logger.Error("Initial day start run failed", "error", err)
	} else if status.IsOver {
		logger.Warn("Budget exceeded",
			"month", status.Month,
			"budget_cents", status.Budget.Cents,
			"spend_cents", status.Current.Cents)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				status, err := runner.Run(ctx, now)
				if err != nil {
					logger.Error("Day start run failed", "error", err)
					continue
				}
				if status.IsOver {
					logger.Warn("Budget exceeded",
						"month", status.Month,
						"budget_cents", status.Budget.Cents,
						"spend_cents", status.Current.Cents)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down dayrun-worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(2 * time.Second):
		logger.Info("Dayrun-worker shutdown complete")
	}
}
