package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a clothing product in the catalogue.
type Product struct {
	ID            string           `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty" db:"discount_price"`
	Category      string           `json:"category" db:"category"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	Variants      []ProductVariant `json:"variants,omitempty"`
}

// UnitPrice returns the price a shopper pays for one unit right now.
// A zero discount price counts as unset.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() {
		return *p.DiscountPrice
	}
	return p.Price
}

// ProductVariant is a purchasable size/color combination with its own stock counter.
type ProductVariant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID string    `json:"productId" db:"product_id"`
	Size      string    `json:"size" db:"size"`
	Color     string    `json:"color" db:"color"`
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// LockedVariant is a variant row read under a row lock together with the
// catalogue data checkout needs to price the line.
type LockedVariant struct {
	ProductVariant
	Product Product
}
