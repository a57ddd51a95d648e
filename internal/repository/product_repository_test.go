package repository

import (
	"context"
	"testing"

	"storefront/internal/model"
	"storefront/internal/testutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_GetAll(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	repo := NewProductRepository(testDB.Pool, zerolog.Nop())

	for _, p := range []struct{ id, name string }{
		{"P001", "Product A"}, {"P002", "Product B"}, {"P003", "Product C"},
		{"P004", "Product D"}, {"P005", "Product E"},
	} {
		testutil.SeedProduct(t, testDB.Pool, p.id, p.name, decimal.NewFromInt(10))
	}

	tests := []struct {
		name     string
		limit    int
		offset   int
		expected int
	}{
		{name: "Get all products", limit: 10, offset: 0, expected: 5},
		{name: "Get first page", limit: 2, offset: 0, expected: 2},
		{name: "Get last page", limit: 2, offset: 4, expected: 1},
		{name: "Offset beyond results", limit: 10, offset: 10, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.GetAll(context.Background(), tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Len(t, products, tt.expected)
			for i := 1; i < len(products); i++ {
				assert.LessOrEqual(t, products[i-1].Name, products[i].Name)
			}
		})
	}
}

func TestProductRepository_GetByID(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	repo := NewProductRepository(testDB.Pool, zerolog.Nop())
	ctx := context.Background()

	testutil.SeedProduct(t, testDB.Pool, "P001", "Denim Jacket", decimal.RequireFromString("89.90"), 3, 0)

	product, err := repo.GetByID(ctx, "P001")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Denim Jacket", product.Name)
	assert.True(t, decimal.RequireFromString("89.90").Equal(product.Price))
	assert.Nil(t, product.DiscountPrice)
	assert.Len(t, product.Variants, 2)

	missing, err := repo.GetByID(ctx, "P999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	testutil.SeedProduct(t, testDB.Pool, "P002", "Canvas Cap", decimal.RequireFromString("15.00"), 4)

	byIDs, err := repo.GetByIDs(ctx, []string{"P002", "P001", "P999"})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	stock := map[string][]int{}
	for _, p := range byIDs {
		for _, v := range p.Variants {
			assert.Equal(t, p.ID, v.ProductID)
			stock[p.ID] = append(stock[p.ID], v.Stock)
		}
	}
	assert.Equal(t, map[string][]int{"P001": {3, 0}, "P002": {4}}, stock)

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductRepository_InsertCatalogEntry(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	tr := NewTransactor(testDB.Pool, 0, zerolog.Nop())
	repo := NewProductRepository(testDB.Pool, zerolog.Nop())
	ctx := context.Background()

	variantID := uuid.New()
	product := &model.Product{
		ID:       "P100",
		Name:     "Wool Scarf",
		Price:    decimal.RequireFromString("25.00"),
		Category: "accessories",
		Variants: []model.ProductVariant{
			{ID: variantID, Size: "ONE", Color: "Grey", Stock: 8},
		},
	}

	insert := func() (bool, int) {
		var created bool
		var variants int
		err := tr.WithTransaction(ctx, func(tx pgx.Tx) error {
			var err error
			created, variants, err = repo.InsertCatalogEntry(ctx, tx, product)
			return err
		})
		require.NoError(t, err)
		return created, variants
	}

	created, variants := insert()
	assert.True(t, created)
	assert.Equal(t, 1, variants)

	// Simulate sales, then re-import: the counter must not be reset.
	_, err := testDB.Pool.Exec(ctx, "UPDATE product_variants SET stock = 2 WHERE id = $1", variantID)
	require.NoError(t, err)

	created, variants = insert()
	assert.False(t, created)
	assert.Equal(t, 0, variants)
	assert.Equal(t, 2, testutil.Stock(t, testDB.Pool, variantID))
}
