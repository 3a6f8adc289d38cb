package store

import (
	"time"
)

// Product represents an individual item available for sale.
// Price is kept in cents to avoid floating-point errors.
type Product struct {
	ID             int64      `json:"id"`
	SKU            string     `json:"sku"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty" opt:"not_required"`
	PriceCents     int64      `json:"price_cents"`
	DiscontinuedAt *time.Time `json:"discontinued_at" opt:"nullable"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Customer represents the user placing orders.
type Customer struct {
	ID       int64           `json:"id"`
	Email    string          `json:"email"`
	FullName string          `json:"full_name"`
	Address  *string         `json:"address" opt:"nullable"`
	Nickname Option[*string] `json:"nickname" opt:"nullable,not_required"`
	Referrer *int64          `json:"referrer_id" opt:"not_required" db:"referrer"`
	Locale   *string         `json:"locale,default:DefaultLocale" opt:"not_required"`
	Password string          `json:"-"`
	IsActive bool            `json:"is_active"`
}

// CustomerPatch is a partial update: an absent field is left alone, a null
// field is cleared.
type CustomerPatch struct {
	Email    Option[string]         `json:"email" opt:"not_required"`
	Address  Option[Option[string]] `json:"address" opt:"nullable,not_required"`
	Settings struct {
		Theme *string `json:"theme" opt:"not_required"`
	} `json:"settings"`
}

// Order represents a transaction made by a customer.
type Order struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	Note       *string     `json:"note"`
	ShippedAt  *time.Time  `json:"shipped_at" opt:"nullable"`
	Items      []OrderItem `json:"items"`
}

// OrderItem represents a specific product line within an order.
type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Gift      *bool  `opt:"not_required"`
	Engraving string `json:"engraving,omitempty"`
}

// OrderStatus is a custom type for type-safe status handling.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)
