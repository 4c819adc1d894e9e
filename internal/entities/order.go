package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusPacked     = "packed"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
)

type Order struct {
	ID           string          `db:"id"`
	Number       string          `db:"number"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
	Status       string          `db:"status"`
	UserID       string          `db:"user_id"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
	ShippingCost decimal.Decimal `db:"shipping_cost"`
	VATAmount    decimal.Decimal `db:"vat_amount"`
	Items        []OrderItem     `db:"-"`
}

// OrderItem freezes the unit price captured at validation time.
type OrderItem struct {
	ID        string          `db:"id"`
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
}
