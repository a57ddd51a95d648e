package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "storefront-seed")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// S3 first when enabled, local files otherwise or on failure.
	fileLoader := catalog.NewFileLoader(logger)
	var s3Loader catalog.Loader
	if cfg.Catalog.S3.Enabled {
		s3Loader, err = catalog.NewS3Loader(ctx, cfg.Catalog.S3.Bucket, cfg.Catalog.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	} else {
		logger.Info().Msg("using local file system for catalogue files (S3 disabled)")
	}
	loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.Catalog.S3.Prefix, logger)

	transactor := repository.NewTransactor(pool, cfg.Database.TxMaxRetries, logger)
	importer := catalog.NewImporter(loader, transactor, repository.NewProductRepository(pool, logger), logger)

	stats, err := importer.Import(ctx, cfg.Catalog.FilePaths)
	if err != nil {
		return err
	}

	logger.Info().
		Int("files", stats.Files).
		Int("products", stats.Products).
		Int("new_products", stats.NewProducts).
		Int("new_variants", stats.NewVariants).
		Msg("catalogue import completed")

	return nil
}
