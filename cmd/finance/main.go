package main

import (
	"os"

	"finance/internal/backend"
	"finance/internal/cli"
	"finance/internal/config"
	apphttp "finance/internal/http"
	applog "finance/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")).WithComponent(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	ctx, stop := cli.SignalContext()
	defer stop()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(cfg.Addr(), result.Transactions, result.Plan, result.Store, logger)

	logger.Info("Starting finance server",
		applog.FieldOperation, applog.OpStartup,
		"addr", cfg.Addr(),
		applog.FieldBackend, cfg.DataBackend,
		"change_events", result.Publisher != nil)

	if err := cli.ServeUntilDone(ctx, logger, srv, cfg.ShutdownTimeout); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		stop()
		if cerr := result.Cleanup(); cerr != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, cerr)
		}
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
