package service

import (
	"context"
	"maps"
	"slices"

	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Reasons reported for order items whose stock could not be returned.
const (
	SkipReasonNoVariant      = "item has no variant reference"
	SkipReasonVariantMissing = "variant no longer exists"
)

// lifecycleService implements LifecycleService.
type lifecycleService struct {
	transactor  repository.Transactor
	variantRepo repository.VariantRepository
	orderRepo   repository.OrderRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewLifecycleService creates a new order lifecycle service.
func NewLifecycleService(
	transactor repository.Transactor,
	variantRepo repository.VariantRepository,
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) LifecycleService {
	return &lifecycleService{
		transactor:  transactor,
		variantRepo: variantRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		metrics:     m,
		logger:      logger.With().Str("service", "lifecycle").Logger(),
	}
}

// Cancel re-reads the order under a row lock, returns its stock and marks it
// CANCELLED in one transaction.
func (s *lifecycleService) Cancel(ctx context.Context, id uuid.UUID) (result *model.CancelResult, err error) {
	ctx, span := tracer.Start(ctx, "LifecycleService.Cancel")
	span.SetAttributes(attribute.String("order.id", id.String()))
	defer func() {
		restored := 0
		if result != nil {
			restored = result.RestoredUnits
		}
		s.metrics.ObserveCancellation(err, restored)
		endSpan(span, err)
	}()

	var previous model.OrderStatus
	err = s.transactor.WithTransaction(ctx, func(tx pgx.Tx) error {
		order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}
		if err := order.Status.CanCancel(); err != nil {
			return err
		}
		previous = order.Status

		res, err := s.restoreStock(ctx, tx, order)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		result = nil
		return nil, s.fail("cancel", id, err)
	}

	for _, skipped := range result.SkippedItems {
		ev := s.logger.Warn().
			Str("order_id", id.String()).
			Str("item_id", skipped.ItemID.String()).
			Int("quantity", skipped.Quantity)
		if skipped.VariantID != nil {
			ev = ev.Str("variant_id", skipped.VariantID.String())
		}
		ev.Msg("stock not restored for order item: " + skipped.Reason)
	}

	s.metrics.ObserveTransition(previous, model.OrderStatusCancelled)
	s.logger.Info().
		Str("order_id", id.String()).
		Str("previous_status", string(previous)).
		Int("restored_units", result.RestoredUnits).
		Int("skipped_items", len(result.SkippedItems)).
		Msg("order cancelled")

	publish(ctx, s.publisher, s.logger, events.NewCancelledEvent(result, previous))

	return result, nil
}

// restoreStock returns every item's quantity to its variant and flips the
// order to CANCELLED. Variants are locked in the same order checkout uses.
func (s *lifecycleService) restoreStock(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.CancelResult, error) {
	items, err := s.orderRepo.GetItems(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	deltas := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if item.VariantID != nil {
			deltas[*item.VariantID] += item.Quantity
		}
	}

	ids := slices.Collect(maps.Keys(deltas))
	locked, err := s.variantRepo.LockByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	result := &model.CancelResult{}
	for _, item := range items {
		switch {
		case item.VariantID == nil:
			result.SkippedItems = append(result.SkippedItems, model.SkippedItem{
				ItemID:   item.ID,
				Quantity: item.Quantity,
				Reason:   SkipReasonNoVariant,
			})
		case !hasVariant(locked, *item.VariantID):
			delete(deltas, *item.VariantID)
			result.SkippedItems = append(result.SkippedItems, model.SkippedItem{
				ItemID:    item.ID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				Reason:    SkipReasonVariantMissing,
			})
		default:
			result.RestoredUnits += item.Quantity
		}
	}

	if err := s.variantRepo.AdjustStock(ctx, tx, deltas); err != nil {
		return nil, err
	}

	updatedAt, err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	order.Status = model.OrderStatusCancelled
	order.UpdatedAt = updatedAt
	order.Items = items
	result.Order = order
	return result, nil
}

// UpdateStatus applies an operator-driven status change.
func (s *lifecycleService) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*model.Order, error) {
	target, err := model.ParseOrderStatus(raw)
	if err != nil {
		s.logger.Warn().Str("order_id", id.String()).Str("status", raw).Msg("unknown order status requested")
		return nil, err
	}

	// Cancelling always goes through Cancel so stock is returned.
	if target == model.OrderStatusCancelled {
		result, err := s.Cancel(ctx, id)
		if err != nil {
			return nil, err
		}
		return result.Order, nil
	}

	ctx, span := tracer.Start(ctx, "LifecycleService.UpdateStatus")
	span.SetAttributes(
		attribute.String("order.id", id.String()),
		attribute.String("order.status", string(target)),
	)
	defer func() { endSpan(span, err) }()

	var (
		order    *model.Order
		previous model.OrderStatus
	)
	err = s.transactor.WithTransaction(ctx, func(tx pgx.Tx) error {
		locked, err := s.orderRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return model.ErrOrderNotFound
		}
		if err := locked.Status.CanTransitionTo(target); err != nil {
			return err
		}

		items, err := s.orderRepo.GetItems(ctx, tx, id)
		if err != nil {
			return err
		}
		updatedAt, err := s.orderRepo.UpdateStatus(ctx, tx, id, target)
		if err != nil {
			return err
		}

		previous = locked.Status
		locked.Status = target
		locked.UpdatedAt = updatedAt
		locked.Items = items
		order = locked
		return nil
	})
	if err != nil {
		err = s.fail("update status", id, err)
		return nil, err
	}

	s.metrics.ObserveTransition(previous, target)
	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(previous)).
		Str("to", string(target)).
		Msg("order status updated")

	publish(ctx, s.publisher, s.logger, events.NewOrderEvent(events.TypeOrderStatusChanged, order, previous))

	return order, nil
}

// fail logs a failed lifecycle operation at a level matching its cause.
func (s *lifecycleService) fail(op string, id uuid.UUID, err error) error {
	if model.IsDomainError(err) {
		s.logger.Info().Err(err).Str("order_id", id.String()).Msg(op + " refused")
		return err
	}
	s.logger.Error().Err(err).Str("order_id", id.String()).Msg(op + " failed")
	return storageError(op, err)
}

func hasVariant(locked map[uuid.UUID]model.LockedVariant, id uuid.UUID) bool {
	_, ok := locked[id]
	return ok
}
