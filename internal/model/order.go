package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPaymentMethod is recorded when the cart does not name one.
const DefaultPaymentMethod = "TRANSFER"

// MaxAmount is the largest value a NUMERIC(12,2) money column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Order represents one successful checkout.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	CustomerName    string          `json:"customerName" db:"customer_name"`
	CustomerEmail   *string         `json:"customerEmail,omitempty" db:"customer_email"`
	CustomerPhone   string          `json:"customerPhone" db:"customer_phone"`
	ShippingAddress string          `json:"shippingAddress" db:"shipping_address"`
	ShippingType    ShippingType    `json:"shippingType" db:"shipping_type"`
	ShippingCost    decimal.Decimal `json:"shippingCost" db:"shipping_cost"`
	Total           decimal.Decimal `json:"total" db:"total"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	Status          OrderStatus     `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
	Items           []OrderItem     `json:"items"`
}

// Subtotal sums price × quantity over the items.
func (o *Order) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// OrderItem represents a line item in an order. Product name, size, color and
// price are copied from the catalogue at purchase time.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	VariantID   *uuid.UUID      `json:"variantId" db:"variant_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Size        string          `json:"size" db:"size"`
	Color       string          `json:"color" db:"color"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Position    int             `json:"-" db:"position"`
	Variant     *ProductVariant `json:"variant,omitempty"`
}

// LineTotal returns price × quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// FormatOrderNumber renders a sequence value as a human-readable order number.
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD-%06d", seq)
}

// CheckoutRequest represents the cart payload submitted at checkout.
type CheckoutRequest struct {
	CustomerName    string                `json:"customerName"`
	CustomerEmail   *string               `json:"customerEmail,omitempty"`
	CustomerPhone   string                `json:"customerPhone"`
	ShippingAddress string                `json:"shippingAddress"`
	Pickup          bool                  `json:"pickup"`
	PaymentMethod   string                `json:"paymentMethod,omitempty"`
	DeliveryCost    *decimal.Decimal      `json:"deliveryCost,omitempty"`
	Items           []CheckoutItemRequest `json:"items"`
}

// CheckoutItemRequest represents a single cart line. Size and color are what
// the client displayed; the stored values come from the variant row.
type CheckoutItemRequest struct {
	VariantID uuid.UUID `json:"variantId"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Order *Order `json:"order"`
}

// OrderListResponse wraps a list of orders.
type OrderListResponse struct {
	Orders []Order `json:"orders"`
}

// UpdateStatusRequest is the body of a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// SkippedItem is an order line whose stock could not be returned on cancellation.
type SkippedItem struct {
	ItemID    uuid.UUID  `json:"itemId"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  int        `json:"quantity"`
	Reason    string     `json:"reason"`
}

// CancelResult is the outcome of a successful cancellation.
type CancelResult struct {
	Order         *Order        `json:"order"`
	RestoredUnits int           `json:"restoredUnits"`
	SkippedItems  []SkippedItem `json:"skippedItems,omitempty"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status *OrderStatus
}
