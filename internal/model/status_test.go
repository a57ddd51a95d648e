package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		raw       string
		expected  OrderStatus
		expectErr bool
	}{
		{raw: "PENDING", expected: OrderStatusPending},
		{raw: "paid", expected: OrderStatusPaid},
		{raw: "  Shipped ", expected: OrderStatusShipped},
		{raw: "CANCELLED", expected: OrderStatusCancelled},
		{raw: "BOGUS", expectErr: true},
		{raw: "", expectErr: true},
		{raw: "CANCELED", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			status, err := ParseOrderStatus(tt.raw)

			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidStatus)
				assert.Contains(t, err.Error(), tt.raw)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	for _, from := range OrderStatuses {
		for _, to := range OrderStatuses {
			err := from.CanTransitionTo(to)

			switch {
			case from.IsTerminal():
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			case from == to:
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			default:
				assert.NoError(t, err, "%s -> %s", from, to)
			}
		}
	}

	assert.ErrorIs(t, OrderStatusPending.CanTransitionTo("BOGUS"), ErrInvalidStatus)
}

func TestOrderStatus_CanCancel(t *testing.T) {
	tests := []struct {
		status      OrderStatus
		expectedErr error
	}{
		{status: OrderStatusPending},
		{status: OrderStatusPaid},
		{status: OrderStatusProcessing},
		{status: OrderStatusShipped},
		{status: OrderStatusDelivered, expectedErr: ErrCannotCancelDelivered},
		{status: OrderStatusCancelled, expectedErr: ErrAlreadyCancelled},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := tt.status.CanCancel()
			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestOrderStatus_UnknownPanics(t *testing.T) {
	assert.False(t, OrderStatus("LOST").Valid())
	assert.Panics(t, func() { OrderStatus("LOST").IsTerminal() })
	assert.Panics(t, func() { _ = OrderStatus("LOST").CanCancel() })
}
