package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"catatan/internal/backend"
	"catatan/internal/catalog"
	"catatan/internal/cli"
	"catatan/internal/config"
	"catatan/internal/finance"
	apphttp "catatan/internal/http"
	applog "catatan/internal/log"
	"catatan/internal/middleware/ratelimit"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	seeds, seedFile := loadSeeds(cfg, logger)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	bcfg.Categories = seeds.Categories()

	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	opts := []finance.Option{finance.WithLocation(cfg.Location())}
	if result.Publisher != nil {
		opts = append(opts, finance.WithPublisher(result.Publisher))
	}
	svc := finance.New(result.Store, catalog.NewTwoTier(result.Store, seeds), opts...)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Finance:        svc,
		Ready:          result.Store.Ping,
		ReportCacheTTL: cfg.ReportCacheTTL,
		RateLimit:      ratelimit.DefaultConfig(),
		Logger:         logger.WithComponent(applog.ComponentHTTP),
	})

	watchCtx, stopWatch := context.WithCancel(ctx)
	if seedFile != nil {
		seedFile.OnReload(srv.Invalidate)
		if err := seedFile.Watch(watchCtx); err != nil {
			logger.Warn("Category seed file will not be reloaded", "error", err, "path", cfg.CategorySeedFile)
		}
	}

	shutdownCtx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		stopWatch()
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown error", "error", err)
		}
		if err := result.Cleanup(); err != nil {
			logger.ErrorContext(ctx, "Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting catatan server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", cfg.Location().String(),
		"sync_publisher", result.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}

// loadSeeds returns the seed file when one is configured and the built-in
// list otherwise. The seed file is also returned so it can be watched.
func loadSeeds(cfg *config.Config, logger *applog.Logger) (catalog.Seeds, *catalog.SeedFile) {
	if cfg.CategorySeedFile == "" {
		return catalog.Static(catalog.Defaults()), nil
	}
	seedFile, err := catalog.LoadSeedFile(cfg.CategorySeedFile)
	if err != nil {
		logger.Error("Failed to load category seed file", "error", err, "path", cfg.CategorySeedFile)
		os.Exit(1)
	}
	logger.Info("Loaded category seed file", "path", cfg.CategorySeedFile, "categories", len(seedFile.Categories()))
	return seedFile, seedFile
}
