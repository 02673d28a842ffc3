package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"caja/internal/amqp"
	"caja/internal/config"
	"caja/internal/export/google"
	"caja/internal/kv"
	"caja/internal/ledger"
	"caja/internal/log"
	"caja/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting caja-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
		os.Exit(1)
	}

	store, err := kv.NewSQLite(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize store", log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	service := ledger.New(store, logger)

	sheetsClient, err := google.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	// Without the bridge the worker would only notice closed sessions on the
	// periodic resync tick.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()

		bridge := amqp.NewBridge(amqpClient, service.Notifier(), service.Origin(), logger)
		group.Go(func() error {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		logger.Info("Change bridge enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("Change bridge disabled - relying on periodic resync only")
	}

	exportWorker := worker.NewExportWorker(service, store, sheetsClient, logger)
	group.Go(func() error {
		if err := exportWorker.Run(ctx, cfg.ExportInterval); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("Worker error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
