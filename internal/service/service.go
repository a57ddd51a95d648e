package service

import (
	"context"
	"time"

	"storefront/internal/events"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("storefront/internal/service")

// publishTimeout bounds the post-commit event write.
const publishTimeout = 5 * time.Second

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its variants.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves the products with the given IDs, with variants.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// CheckoutService turns a cart into a committed order.
type CheckoutService interface {
	// Checkout validates the cart, reserves stock for every line and records
	// the order in one transaction. Nothing is written when it fails.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.Order, error)
}

// LifecycleService moves orders through their statuses.
type LifecycleService interface {
	// Cancel cancels an order and returns its reserved stock.
	Cancel(ctx context.Context, id uuid.UUID) (*model.CancelResult, error)

	// UpdateStatus moves an order to the status named by raw.
	UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*model.Order, error)
}

// OrderQueryService serves read-only order views.
type OrderQueryService interface {
	// List returns orders newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// GetByID retrieves one order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

// storageError passes business rule errors through and marks anything else
// as an infrastructure failure.
func storageError(op string, err error) error {
	if model.IsDomainError(err) {
		return err
	}
	return model.NewStorageError(op, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish writes an event after commit. Failures are logged and never
// reach the caller.
func publish(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, event events.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", string(event.Type)).
			Str("order_id", event.OrderID.String()).
			Msg("failed to publish order event")
	}
}
