package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	transactor  repository.Transactor
	variantRepo repository.VariantRepository
	orderRepo   repository.OrderRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
	deliveryFee decimal.Decimal
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	transactor repository.Transactor,
	variantRepo repository.VariantRepository,
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	shipping config.ShippingConfig,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		transactor:  transactor,
		variantRepo: variantRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		metrics:     m,
		deliveryFee: shipping.DeliveryFee.Round(2),
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout reserves stock for every cart line and records the order.
func (s *checkoutService) Checkout(ctx context.Context, req *model.CheckoutRequest) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "CheckoutService.Checkout")
	defer func() {
		units := 0
		if order != nil {
			units = totalUnits(order.Items)
			span.SetAttributes(
				attribute.String("order.id", order.ID.String()),
				attribute.String("order.number", order.OrderNumber),
			)
		}
		s.metrics.ObserveCheckout(err, units)
		endSpan(span, err)
	}()

	if err := validateCheckout(req); err != nil {
		s.logger.Warn().Err(err).Msg("checkout request rejected")
		return nil, err
	}
	span.SetAttributes(attribute.Int("checkout.lines", len(req.Items)))

	err = s.transactor.WithTransaction(ctx, func(tx pgx.Tx) error {
		built, err := s.reserve(ctx, tx, req)
		if err != nil {
			return err
		}
		order = built
		return nil
	})
	if err != nil {
		order = nil
		if model.IsDomainError(err) {
			s.logger.Info().Err(err).Int("lines", len(req.Items)).Msg("checkout refused")
			return nil, err
		}
		s.logger.Error().Err(err).Int("lines", len(req.Items)).Msg("checkout failed")
		return nil, storageError("checkout", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created successfully")

	publish(ctx, s.publisher, s.logger, events.NewOrderEvent(events.TypeOrderCreated, order, ""))

	return order, nil
}

// reserve is the transactional body of Checkout. It may run more than once.
func (s *checkoutService) reserve(ctx context.Context, tx pgx.Tx, req *model.CheckoutRequest) (*model.Order, error) {
	locked, err := s.variantRepo.LockByIDs(ctx, tx, distinctVariantIDs(req.Items))
	if err != nil {
		return nil, err
	}

	// Running stock per variant, so repeated lines for one variant are
	// checked against what earlier lines left.
	remaining := make(map[uuid.UUID]int, len(locked))
	for id, v := range locked {
		remaining[id] = v.Stock
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:            uuid.New(),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: normalizeEmail(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		PaymentMethod: paymentMethod(req.PaymentMethod),
		Status:        model.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         make([]model.OrderItem, 0, len(req.Items)),
	}

	deltas := make(map[uuid.UUID]int, len(locked))
	for i, line := range req.Items {
		v, ok := locked[line.VariantID]
		if !ok {
			return nil, &model.VariantNotFoundError{Line: i, VariantID: line.VariantID}
		}
		if line.Quantity > remaining[line.VariantID] {
			return nil, &model.InsufficientStockError{
				Line:        i,
				VariantID:   v.ID,
				ProductID:   v.ProductID,
				ProductName: v.Product.Name,
				Size:        v.Size,
				Color:       v.Color,
				Requested:   line.Quantity,
				Available:   remaining[line.VariantID],
			}
		}
		remaining[line.VariantID] -= line.Quantity
		deltas[line.VariantID] -= line.Quantity

		variantID := v.ID
		order.Items = append(order.Items, model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   v.ProductID,
			VariantID:   &variantID,
			ProductName: v.Product.Name,
			Size:        v.Size,
			Color:       v.Color,
			Price:       v.Product.UnitPrice(),
			Quantity:    line.Quantity,
			Position:    i,
		})
	}

	if req.Pickup {
		order.ShippingType = model.ShippingTypePickup
		order.ShippingAddress = model.PickupAddress
		order.ShippingCost = decimal.Zero
	} else {
		order.ShippingType = model.ShippingTypeDelivery
		order.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
		order.ShippingCost = s.deliveryFee
		if req.DeliveryCost != nil {
			order.ShippingCost = req.DeliveryCost.Round(2)
		}
	}
	order.Total = order.Subtotal().Add(order.ShippingCost)
	if order.Total.GreaterThan(model.MaxAmount) {
		return nil, model.NewValidationError("items", "order total exceeds the maximum amount")
	}

	if order.OrderNumber, err = s.orderRepo.NextOrderNumber(ctx, tx); err != nil {
		return nil, err
	}
	if err := s.variantRepo.AdjustStock(ctx, tx, deltas); err != nil {
		return nil, err
	}
	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return nil, err
	}

	return order, nil
}

// validateCheckout rejects carts that can never succeed, before any row is locked.
func validateCheckout(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewValidationError("body", "checkout request is required")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return model.NewValidationError("customerName", "customer name is required")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return model.NewValidationError("customerPhone", "customer phone is required")
	}
	if len(req.Items) == 0 {
		return model.NewValidationError("items", "at least one item is required")
	}
	for i, item := range req.Items {
		if item.VariantID == uuid.Nil {
			return model.NewValidationError(fmt.Sprintf("items[%d].variantId", i), "variant ID is required")
		}
		if item.Quantity <= 0 {
			return model.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "quantity must be positive")
		}
	}
	if !req.Pickup {
		if strings.TrimSpace(req.ShippingAddress) == "" {
			return model.NewValidationError("shippingAddress", "shipping address is required for delivery")
		}
		if req.DeliveryCost != nil && req.DeliveryCost.IsNegative() {
			return model.NewValidationError("deliveryCost", "delivery cost cannot be negative")
		}
		if req.DeliveryCost != nil && req.DeliveryCost.Round(2).GreaterThan(model.MaxAmount) {
			return model.NewValidationError("deliveryCost", "delivery cost exceeds the maximum amount")
		}
	}
	return nil
}

func distinctVariantIDs(items []model.CheckoutItemRequest) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.VariantID]; ok {
			continue
		}
		seen[item.VariantID] = struct{}{}
		ids = append(ids, item.VariantID)
	}
	return ids
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func paymentMethod(raw string) string {
	if m := strings.ToUpper(strings.TrimSpace(raw)); m != "" {
		return m
	}
	return model.DefaultPaymentMethod
}

func totalUnits(items []model.OrderItem) int {
	units := 0
	for _, item := range items {
		units += item.Quantity
	}
	return units
}
