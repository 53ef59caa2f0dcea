package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting ledger server")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional: without it writes stay local and nothing is exported.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPExportQueue, cfg.AMQPAlertQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without export", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - recorded transactions will not be exported")
	}

	ledgerService := services.NewLedgerService(repo, amqpClient)
	scheduler := services.NewSalaryScheduler(repo)
	applier := services.NewDefaultsApplier(repo)
	monitor := services.NewBudgetMonitor(repo)
	runner := services.NewDayStartRunner(scheduler, applier, monitor, amqpClient)

	// Catch up today's salary, defaults, and budget check before serving.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if status, err := runner.Run(startupCtx, time.Now()); err != nil {
		logger.Error("Day start run failed", "error", err)
	} else if status.IsOver {
		logger.Warn("Budget exceeded at startup",
			"month", status.Month,
			"budget_cents", status.Budget.Cents,
			"spend_cents", status.Current.Cents)
	}
	startupCancel()

	srv := apphttp.NewServer(":"+cfg.Port, ledgerService, scheduler, applier, monitor, cfg.RecentLimit)
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting ledger server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
