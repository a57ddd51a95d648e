package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor runs a unit of work inside a database transaction.
type Transactor interface {
	// WithTransaction begins a transaction, runs fn and commits when fn returns
	// nil. Any error rolls the transaction back. The whole closure may be run
	// again when PostgreSQL aborts it with a serialization failure or deadlock,
	// so fn must not have side effects outside tx.
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its variants.
	// Returns nil without error when the product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves the products with the given IDs and their variants.
	// Unknown IDs are absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// InsertCatalogEntry inserts a product and its variants, leaving existing
	// rows untouched. It reports whether the product row was new and how many
	// variant rows were inserted.
	InsertCatalogEntry(ctx context.Context, tx pgx.Tx, product *model.Product) (bool, int, error)
}

// VariantRepository is the store of per-variant stock counters.
type VariantRepository interface {
	// LockByIDs takes row locks on the given variants in ascending ID order and
	// returns them with their product. IDs that do not exist are absent from
	// the result.
	LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]model.LockedVariant, error)

	// AdjustStock adds each signed delta to the variant's stock. A delta that
	// would take stock below zero, or a variant that does not exist, fails the
	// whole call.
	AdjustStock(ctx context.Context, tx pgx.Tx, deltas map[uuid.UUID]int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// NextOrderNumber draws the next human-readable order number.
	NextOrderNumber(ctx context.Context, tx pgx.Tx) (string, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetForUpdate reads an order row under a row lock. Items are not loaded.
	// Returns nil without error when the order does not exist.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetItems loads an order's items in submission order.
	GetItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error)

	// UpdateStatus sets the status of an order and returns the new update time.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) (time.Time, error)

	// GetByID retrieves an order with its items and their current variants.
	// Returns nil without error when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List returns orders newest first with their items.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
}
