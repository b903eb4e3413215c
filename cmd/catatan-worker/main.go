package main

import (
	"context"
	"errors"
	"os"
	"time"
	_ "time/tzdata"

	"catatan/internal/amqp"
	"catatan/internal/backend"
	"catatan/internal/catalog"
	"catatan/internal/cli"
	applog "catatan/internal/log"
	"catatan/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting catatan-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	// the worker consumes; it never publishes
	bcfg.AMQPURL = ""

	ctx := context.Background()
	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	}()

	exporter, err := factory.CreateExporter(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create exporter", "error", err)
		os.Exit(1)
	}

	var seeds catalog.Seeds
	if cfg.CategorySeedFile != "" {
		sf, err := catalog.LoadSeedFile(cfg.CategorySeedFile)
		if err != nil {
			logger.Error("Failed to load category seed file", "error", err, "path", cfg.CategorySeedFile)
			os.Exit(1)
		}
		seeds = sf
	}

	syncWorker := worker.NewSyncWorker(result.Store, exporter,
		catalog.NewTwoTier(result.Store, seeds), cfg.SyncBatchSize, cfg.SyncMaxAttempts)
	processor := worker.NewProcessor(syncWorker, worker.ProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
	})

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, relying on polling", "error", err)
			consumer = nil
		}
	} else {
		logger.Info("AMQP disabled, relying on polling")
	}

	runCtx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.ErrorContext(ctx, "Processor stop error", "error", err)
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logger.ErrorContext(ctx, "AMQP close error", "error", err)
			}
		}
	})

	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(runCtx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
	}

	if err := processor.Start(runCtx); err != nil {
		logger.Error("Failed to start sync processor", "error", err)
		os.Exit(1)
	}

	if consumer != nil {
		go func() {
			err := consumer.ConsumeTransactionSync(runCtx, syncWorker.HandleSyncMessage)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
		}()
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker stopped")
}
