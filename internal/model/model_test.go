package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProduct_UnitPrice(t *testing.T) {
	discount := dec("15.00")
	zero := decimal.Zero

	tests := []struct {
		name     string
		product  Product
		expected string
	}{
		{name: "No discount", product: Product{Price: dec("20.00")}, expected: "20.00"},
		{name: "Discount applies", product: Product{Price: dec("20.00"), DiscountPrice: &discount}, expected: "15.00"},
		{name: "Zero discount is unset", product: Product{Price: dec("20.00"), DiscountPrice: &zero}, expected: "20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.product.UnitPrice().StringFixed(2))
		})
	}
}

func TestOrder_Subtotal(t *testing.T) {
	order := Order{Items: []OrderItem{
		{Price: dec("19.99"), Quantity: 3},
		{Price: dec("0.01"), Quantity: 1},
	}}

	assert.Equal(t, "59.98", order.Subtotal().StringFixed(2))
	assert.True(t, (&Order{}).Subtotal().IsZero())
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD-000001", FormatOrderNumber(1))
	assert.Equal(t, "ORD-123456", FormatOrderNumber(123456))
	assert.Equal(t, "ORD-1234567", FormatOrderNumber(1234567))
}

func TestIsDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "Sentinel", err: ErrOrderNotFound, expected: true},
		{name: "Wrapped sentinel", err: fmt.Errorf("order x: %w", ErrOrderNotFound), expected: true},
		{name: "Validation", err: NewValidationError("items", "required"), expected: true},
		{name: "Variant not found", err: &VariantNotFoundError{Line: 0, VariantID: uuid.New()}, expected: true},
		{name: "Insufficient stock", err: &InsufficientStockError{}, expected: true},
		{name: "Transition", err: NewTransitionError(OrderStatusDelivered, OrderStatusPaid, "no"), expected: true},
		{name: "Invalid status", err: NewInvalidStatusError("BOGUS"), expected: true},
		{name: "Storage", err: NewStorageError("checkout", errors.New("conn reset")), expected: false},
		{name: "Plain error", err: errors.New("boom"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDomainError(tt.err))
		})
	}
}

func TestStructuredErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("conn reset")
	storage := NewStorageError("cancel", cause)

	assert.ErrorIs(t, NewValidationError("f", "m"), ErrValidation)
	assert.ErrorIs(t, &VariantNotFoundError{}, ErrVariantNotFound)
	assert.ErrorIs(t, &InsufficientStockError{}, ErrInsufficientStock)
	assert.ErrorIs(t, NewTransitionError(OrderStatusPaid, OrderStatusPaid, "same"), ErrInvalidTransition)
	assert.ErrorIs(t, storage, ErrStorage)
	assert.ErrorIs(t, storage, cause)
	assert.NotErrorIs(t, ErrOrderNotFound, ErrProductNotFound)
}

func TestInsufficientStockError_JSON(t *testing.T) {
	id := uuid.MustParse("6f1c2c1e-7e0b-4f4a-9c43-1d1c1f1e2a3b")
	err := &InsufficientStockError{
		Line: 1, VariantID: id, ProductID: "P002", ProductName: "Scarf",
		Size: "ONE", Color: "Red", Requested: 5, Available: 1,
	}

	data, mErr := json.Marshal(err)
	require.NoError(t, mErr)
	assert.JSONEq(t, `{
		"line": 1,
		"variantId": "6f1c2c1e-7e0b-4f4a-9c43-1d1c1f1e2a3b",
		"productId": "P002",
		"productName": "Scarf",
		"size": "ONE",
		"color": "Red",
		"requested": 5,
		"available": 1
	}`, string(data))
	assert.Equal(t, "insufficient stock for Scarf (ONE/Red): requested 5, available 1", err.Error())
}
