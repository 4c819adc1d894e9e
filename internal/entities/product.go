package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InteractionView  = "view"
	InteractionShare = "share"
)

type Product struct {
	ID     string          `db:"id"`
	Name   string          `db:"name"`
	Price  decimal.Decimal `db:"price"`
	Stock  int             `db:"stock"`
	Views  int             `db:"views"`
	Shares int             `db:"shares"`
}

type Review struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ProductID string    `db:"product_id"`
	Rating    int       `db:"rating"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
