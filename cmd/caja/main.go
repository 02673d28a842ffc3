package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"caja/internal/amqp"
	"caja/internal/config"
	apphttp "caja/internal/http"
	"caja/internal/kv"
	"caja/internal/ledger"
	"caja/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer store.Close()

	service := ledger.New(store, logger)

	srv := apphttp.NewServer(":"+cfg.Port, service)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

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
		logger.Info("Change bridge disabled - no AMQP_URL provided")
	}

	group.Go(func() error {
		logger.Info("Starting caja server", "port", cfg.Port, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func openStore(cfg *config.Config, logger *log.Logger) (kv.Store, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		store, err := kv.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
		return store, nil
	default:
		logger.Info("Initialized memory backend")
		return kv.NewMemory(), nil
	}
}
