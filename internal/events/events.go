// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type names an order lifecycle event.
type Type string

const (
	TypeOrderCreated       Type = "order.created"
	TypeOrderCancelled     Type = "order.cancelled"
	TypeOrderStatusChanged Type = "order.status_changed"
)

// OrderEvent is the payload written for every committed order change.
type OrderEvent struct {
	ID             uuid.UUID         `json:"id"`
	Type           Type              `json:"type"`
	OrderID        uuid.UUID         `json:"orderId"`
	OrderNumber    string            `json:"orderNumber"`
	Status         model.OrderStatus `json:"status"`
	PreviousStatus model.OrderStatus `json:"previousStatus,omitempty"`
	Total          decimal.Decimal   `json:"total"`
	Items          []ItemQuantity    `json:"items,omitempty"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

// ItemQuantity is the stock movement carried by created and cancelled events.
// Cancelled events list only the lines whose stock went back to a variant.
type ItemQuantity struct {
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  int        `json:"quantity"`
}

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NewOrderEvent builds an event of type typ for order.
func NewOrderEvent(typ Type, order *model.Order, previous model.OrderStatus) OrderEvent {
	e := OrderEvent{
		ID:             uuid.New(),
		Type:           typ,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		PreviousStatus: previous,
		Total:          order.Total,
		OccurredAt:     order.UpdatedAt.UTC(),
	}
	if typ != TypeOrderStatusChanged {
		for _, item := range order.Items {
			e.Items = append(e.Items, ItemQuantity{VariantID: item.VariantID, Quantity: item.Quantity})
		}
	}
	return e
}

// NewCancelledEvent builds the order.cancelled event for a completed
// cancellation. Items skipped during the stock restore are left out.
func NewCancelledEvent(result *model.CancelResult, previous model.OrderStatus) OrderEvent {
	skipped := make(map[uuid.UUID]struct{}, len(result.SkippedItems))
	for _, item := range result.SkippedItems {
		skipped[item.ItemID] = struct{}{}
	}

	e := NewOrderEvent(TypeOrderCancelled, result.Order, previous)
	e.Items = nil
	for _, item := range result.Order.Items {
		if _, ok := skipped[item.ID]; ok {
			continue
		}
		e.Items = append(e.Items, ItemQuantity{VariantID: item.VariantID, Quantity: item.Quantity})
	}
	return e
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
