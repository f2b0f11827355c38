package main

import (
	"context"
	"errors"
	"os"

	"finance/internal/amqp"
	"finance/internal/backend"
	"finance/internal/cli"
	"finance/internal/config"
	applog "finance/internal/log"
	gsheet "finance/internal/sheets/google"
	"finance/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")).WithComponent(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	logger.Info("Starting finance-worker", applog.FieldOperation, applog.OpStartup, applog.FieldBackend, cfg.DataBackend)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	// The worker only reads; change events come from the API process.
	st, closeStore, err := backend.NewFactory(logger).OpenStore(ctx, backendConfig)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer func() {
			if err := closeStore(); err != nil {
				logger.Error("Failed to close store", applog.FieldError, err)
			}
		}()
	}

	mirror, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:     cfg.GoogleSpreadsheetID,
		TransactionsSheet: cfg.GoogleTransactionsSheet,
		PlanSheet:         cfg.GooglePlanSheet,
		CredentialsJSON:   cfg.GoogleServiceAccountJSON,
		CredentialsFile:   cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return err
	}
	logger.WithComponent(applog.ComponentSheets).Info("Google Sheets mirror ready",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"transactions_sheet", cfg.GoogleTransactionsSheet,
		"plan_sheet", cfg.GooglePlanSheet)

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer consumer.Close()
	logger.WithComponent(applog.ComponentAMQP).Info("Consuming change events",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	syncWorker := worker.NewSyncWorker(st, mirror, cfg.SyncDebounce)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return syncWorker.Run(gctx) })
	g.Go(func() error { return consumer.ConsumeChanges(gctx, syncWorker.HandleChange) })

	err = g.Wait()
	stats := syncWorker.Stats()
	logger.Info("Sync worker summary",
		applog.FieldOperation, applog.OpSync,
		"events", stats.Events,
		"syncs", stats.Syncs,
		"failures", stats.Failures)
	return err
}
