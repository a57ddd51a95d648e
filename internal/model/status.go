package model

import (
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in happy-path order followed by CANCELLED.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus converts a raw value into an OrderStatus.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", NewInvalidStatusError(raw)
	}
	return s, nil
}

// Valid reports whether s is one of the six known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled:
		return true
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped:
		return false
	default:
		panic(fmt.Sprintf("unknown order status %q", string(s)))
	}
}

// CanTransitionTo checks an operator-driven status change from s to target.
// Any known status may be targeted except the current one, and nothing leaves
// a terminal state.
func (s OrderStatus) CanTransitionTo(target OrderStatus) error {
	if !target.Valid() {
		return NewInvalidStatusError(string(target))
	}
	if s.IsTerminal() {
		return NewTransitionError(s, target, fmt.Sprintf("order is %s and cannot change status", s))
	}
	if s == target {
		return NewTransitionError(s, target, fmt.Sprintf("order is already %s", s))
	}
	return nil
}

// CanCancel checks whether an order in status s may be cancelled.
func (s OrderStatus) CanCancel() error {
	switch s {
	case OrderStatusCancelled:
		return ErrAlreadyCancelled
	case OrderStatusDelivered:
		return ErrCannotCancelDelivered
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped:
		return nil
	default:
		panic(fmt.Sprintf("unknown order status %q", string(s)))
	}
}

// ShippingType says how the goods reach the customer.
type ShippingType string

const (
	ShippingTypeDelivery ShippingType = "DELIVERY"
	ShippingTypePickup   ShippingType = "PICKUP"
)

// PickupAddress is stored as the shipping address of in-store pickup orders.
const PickupAddress = "IN_STORE_PICKUP"
