package catalog

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Stats summarises an import run.
type Stats struct {
	Files       int
	Products    int
	NewProducts int
	NewVariants int
}

// Importer writes catalogue files into the product and variant tables.
// Rows that already exist are left alone, so an import never restocks.
type Importer struct {
	loader      Loader
	transactor  repository.Transactor
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewImporter creates a new catalogue importer.
func NewImporter(loader Loader, transactor repository.Transactor, productRepo repository.ProductRepository, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:      loader,
		transactor:  transactor,
		productRepo: productRepo,
		logger:      logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import loads every file and inserts it in its own transaction. It stops at
// the first failing file; files imported before it stay committed.
func (im *Importer) Import(ctx context.Context, paths []string) (Stats, error) {
	var total Stats

	for _, path := range paths {
		products, err := im.loader.Load(ctx, path)
		if err != nil {
			return total, fmt.Errorf("failed to load catalogue %s: %w", path, err)
		}

		stats, err := im.insert(ctx, products)
		if err != nil {
			im.logger.Error().Err(err).Str("file", path).Msg("catalogue import failed")
			return total, fmt.Errorf("failed to import catalogue %s: %w", path, err)
		}

		total.Files++
		total.Products += stats.Products
		total.NewProducts += stats.NewProducts
		total.NewVariants += stats.NewVariants

		im.logger.Info().
			Str("file", path).
			Int("products", stats.Products).
			Int("new_products", stats.NewProducts).
			Int("new_variants", stats.NewVariants).
			Msg("catalogue file imported")
	}

	return total, nil
}

func (im *Importer) insert(ctx context.Context, products []model.Product) (Stats, error) {
	var stats Stats
	err := im.transactor.WithTransaction(ctx, func(tx pgx.Tx) error {
		stats = Stats{}
		for i := range products {
			created, variants, err := im.productRepo.InsertCatalogEntry(ctx, tx, &products[i])
			if err != nil {
				return err
			}
			stats.Products++
			if created {
				stats.NewProducts++
			}
			stats.NewVariants += variants
		}
		return nil
	})
	return stats, err
}
