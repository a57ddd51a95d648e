package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderQueryService implements OrderQueryService.
type orderQueryService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderQueryService creates a new order query service.
func NewOrderQueryService(orderRepo repository.OrderRepository, logger zerolog.Logger) OrderQueryService {
	return &orderQueryService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order_query").Logger(),
	}
}

// List returns all orders, newest first.
func (s *orderQueryService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, model.NewStorageError("list orders", err)
	}

	s.logger.Debug().Int("count", len(orders)).Msg("listed orders")

	return orders, nil
}

// GetByID retrieves an order by its ID with all items.
func (s *orderQueryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, model.NewStorageError("get order", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, fmt.Errorf("order %s: %w", id, model.ErrOrderNotFound)
	}

	return order, nil
}
