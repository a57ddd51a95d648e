// Package testutil starts disposable PostgreSQL instances for integration tests.
package testutil

import (
	"context"
	"strconv"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a migrated test database.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container, applies the schema and registers
// cleanup on t. Tests calling it are skipped in -short mode.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{Container: container, Pool: pool, ConnStr: connStr}
}

// CleanupDB removes all rows so subtests start from an empty catalogue.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE order_items, orders, product_variants, products")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// SeedProduct inserts a product with one variant per entry in stocks and
// returns the variants in the same order. Variant colors are C0, C1, ...
func SeedProduct(t *testing.T, pool *pgxpool.Pool, id, name string, price decimal.Decimal, stocks ...int) []model.ProductVariant {
	t.Helper()

	ctx := context.Background()

	_, err := pool.Exec(ctx,
		"INSERT INTO products (id, name, price, category) VALUES ($1, $2, $3, $4)",
		id, name, price, "test")
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", id, err)
	}

	variants := make([]model.ProductVariant, 0, len(stocks))
	for i, stock := range stocks {
		v := model.ProductVariant{
			ID:        uuid.New(),
			ProductID: id,
			Size:      "M",
			Color:     "C" + strconv.Itoa(i),
			Stock:     stock,
		}
		_, err := pool.Exec(ctx,
			"INSERT INTO product_variants (id, product_id, size, color, stock) VALUES ($1, $2, $3, $4, $5)",
			v.ID, v.ProductID, v.Size, v.Color, v.Stock)
		if err != nil {
			t.Fatalf("failed to seed variant for %s: %v", id, err)
		}
		variants = append(variants, v)
	}
	return variants
}

// Stock reads the committed stock of a variant.
func Stock(t *testing.T, pool *pgxpool.Pool, variantID uuid.UUID) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		"SELECT stock FROM product_variants WHERE id = $1", variantID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock for %s: %v", variantID, err)
	}
	return stock
}
