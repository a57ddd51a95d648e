package repository

import (
	"context"
	"fmt"
	"slices"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// variantRepository implements VariantRepository using PostgreSQL.
type variantRepository struct {
	logger zerolog.Logger
}

// NewVariantRepository creates a PostgreSQL-backed variant store. All its
// operations run on a caller-supplied transaction.
func NewVariantRepository(logger zerolog.Logger) VariantRepository {
	return &variantRepository{
		logger: logger.With().Str("repository", "variant").Logger(),
	}
}

// LockByIDs locks the requested variants and returns them keyed by ID.
func (r *variantRepository) LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]model.LockedVariant, error) {
	locked := make(map[uuid.UUID]model.LockedVariant, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	// ORDER BY id fixes the lock acquisition order across transactions.
	query := `
		SELECT v.id, v.product_id, v.size, v.color, v.stock, v.created_at, v.updated_at,
		       p.id, p.name, p.price, p.discount_price, p.category, p.created_at
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = ANY($1)
		ORDER BY v.id
		FOR UPDATE OF v
	`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock variants")
		return nil, fmt.Errorf("failed to lock variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lv model.LockedVariant
		err := rows.Scan(
			&lv.ID, &lv.ProductID, &lv.Size, &lv.Color, &lv.Stock, &lv.CreatedAt, &lv.UpdatedAt,
			&lv.Product.ID, &lv.Product.Name, &lv.Product.Price, &lv.Product.DiscountPrice,
			&lv.Product.Category, &lv.Product.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan locked variant row")
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		locked[lv.ID] = lv
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating locked variant rows")
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	r.logger.Debug().
		Int("requested", len(ids)).
		Int("locked", len(locked)).
		Msg("variants locked")

	return locked, nil
}

// AdjustStock applies the deltas as one batch, in ascending variant ID order.
func (r *variantRepository) AdjustStock(ctx context.Context, tx pgx.Tx, deltas map[uuid.UUID]int) error {
	ids := make([]uuid.UUID, 0, len(deltas))
	for id, delta := range deltas {
		if delta != 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })

	query := `
		UPDATE product_variants
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
	`

	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(query, id, deltas[id])
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, id := range ids {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("variant_id", id.String()).
				Int("delta", deltas[id]).
				Msg("failed to adjust stock")
			return fmt.Errorf("failed to adjust stock for variant %s: %w", id, err)
		}
		if tag.RowsAffected() != 1 {
			r.logger.Error().
				Str("variant_id", id.String()).
				Int("delta", deltas[id]).
				Msg("stock adjustment matched no row")
			return fmt.Errorf("stock adjustment of %d for variant %s matched no row", deltas[id], id)
		}
	}

	r.logger.Debug().Int("count", len(ids)).Msg("stock adjusted")

	return nil
}
