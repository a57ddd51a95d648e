package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, price, discount_price, category, created_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll retrieves all products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return r.collectProducts(rows)
}

// GetByID retrieves a single product and its variants.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.DiscountPrice, &p.Category, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	products := []model.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// GetByIDs retrieves the products with the given IDs and their variants.
// Unknown IDs are absent from the result.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	products, err := r.collectProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// InsertCatalogEntry inserts a product and its variants. Existing rows keep
// their data and, for variants, their stock.
func (r *productRepository) InsertCatalogEntry(ctx context.Context, tx pgx.Tx, product *model.Product) (bool, int, error) {
	productQuery := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		ON CONFLICT (id) DO NOTHING
	`

	var createdAt any
	if !product.CreatedAt.IsZero() {
		createdAt = product.CreatedAt
	}

	tag, err := tx.Exec(ctx, productQuery,
		product.ID, product.Name, product.Price, product.DiscountPrice, product.Category, createdAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to insert product")
		return false, 0, fmt.Errorf("failed to insert product %s: %w", product.ID, err)
	}
	created := tag.RowsAffected() == 1

	if len(product.Variants) == 0 {
		return created, 0, nil
	}

	variantQuery := `
		INSERT INTO product_variants (id, product_id, size, color, stock)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, v := range product.Variants {
		batch.Queue(variantQuery, v.ID, product.ID, v.Size, v.Color, v.Stock)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for _, v := range product.Variants {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("product_id", product.ID).
				Str("variant_id", v.ID.String()).
				Msg("failed to insert variant")
			return false, 0, fmt.Errorf("failed to insert variant %s: %w", v.ID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	return created, inserted, nil
}

// attachVariants loads the variants of all given products with one query.
func (r *productRepository) attachVariants(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
		products[i].Variants = []model.ProductVariant{}
	}

	query := `
		SELECT id, product_id, size, color, stock, created_at, updated_at
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY product_id, size, color
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("products", len(products)).Msg("failed to query variants")
		return fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v model.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Stock, &v.CreatedAt, &v.UpdatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		i := index[v.ProductID]
		products[i].Variants = append(products[i].Variants, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return fmt.Errorf("error iterating variants: %w", err)
	}

	return nil
}

func (r *productRepository) collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.DiscountPrice, &p.Category, &p.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
