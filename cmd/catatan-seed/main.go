package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"catatan/internal/backend"
	"catatan/internal/catalog"
	"catatan/internal/cli"
	"catatan/internal/core"
	applog "catatan/internal/log"
	"catatan/internal/ports"
)

func main() {
	file := flag.String("file", "", "JSON category list (defaults to CATEGORY_SEED_FILE, then the built-in list)")
	dryRun := flag.Bool("dry-run", false, "print the categories without writing them")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentSeed)
	cfg := cli.LoadAndValidateConfig(logger)

	path := *file
	if path == "" {
		path = cfg.CategorySeedFile
	}
	cats := catalog.Defaults()
	if path != "" {
		sf, err := catalog.LoadSeedFile(path)
		if err != nil {
			logger.Error("Failed to load category seed file", "error", err, "path", path)
			os.Exit(1)
		}
		cats = sf.Categories()
	}

	if *dryRun {
		for _, c := range cats {
			fmt.Printf("%-16s %-8s %s\n", c.ID, c.Flow, c.Label)
		}
		return
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	bcfg.AMQPURL = ""

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer result.Cleanup()

	n, err := seed(ctx, result.Store, cats)
	if err != nil {
		logger.Error("Seeding failed", "error", err, "written", n)
		os.Exit(1)
	}
	logger.Info("Categories seeded", "count", n, "backend", cfg.DataBackend)
}

func seed(ctx context.Context, store ports.CategoryWriter, cats []core.Category) (int, error) {
	for i, c := range cats {
		if err := store.UpsertCategory(ctx, c); err != nil {
			return i, fmt.Errorf("upsert %s: %w", c.ID, err)
		}
	}
	return len(cats), nil
}
