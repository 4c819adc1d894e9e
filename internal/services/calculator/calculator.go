// Package calculator turns a list of cart lines into the order totals. It does
// no I/O so the same numbers can be produced for the live cart and for the
// authoritative server-side recompute.
package calculator

import "github.com/shopspring/decimal"

var (
	DefaultFreeShippingThreshold = decimal.NewFromInt(500)
	DefaultFlatShippingRate      = decimal.NewFromInt(99)

	// Epsilon absorbs rounding noise when comparing client and server amounts.
	Epsilon = decimal.New(1, -2)
)

type Item struct {
	Quantity int
	Price    decimal.Decimal
}

type Totals struct {
	Subtotal     decimal.Decimal
	VATAmount    decimal.Decimal
	ShippingCost decimal.Decimal
	TotalAmount  decimal.Decimal
}

// VATFunc computes the VAT owed on a subtotal.
type VATFunc func(subtotal decimal.Decimal) decimal.Decimal

func NoVAT(decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// RateVAT charges rate on the subtotal, rounded to cents.
func RateVAT(rate decimal.Decimal) VATFunc {
	return func(subtotal decimal.Decimal) decimal.Decimal {
		return subtotal.Mul(rate).Round(2)
	}
}

type Calculator struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingRate      decimal.Decimal
	VAT                   VATFunc
}

func New(freeShippingThreshold, flatShippingRate decimal.Decimal, vat VATFunc) Calculator {
	if vat == nil {
		vat = NoVAT
	}

	return Calculator{
		FreeShippingThreshold: freeShippingThreshold,
		FlatShippingRate:      flatShippingRate,
		VAT:                   vat,
	}
}

func Default() Calculator {
	return New(DefaultFreeShippingThreshold, DefaultFlatShippingRate, NoVAT)
}

// Calculate sums the lines and applies the single free-shipping breakpoint,
// which is inclusive on the free side.
func (c Calculator) Calculate(items []Item) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	shipping := c.FlatShippingRate
	if subtotal.GreaterThanOrEqual(c.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	vat := decimal.Zero
	if c.VAT != nil {
		vat = c.VAT(subtotal)
	}

	return Totals{
		Subtotal:     subtotal,
		VATAmount:    vat,
		ShippingCost: shipping,
		TotalAmount:  subtotal.Add(shipping).Add(vat),
	}
}

// CalculateTotals uses the default shipping rules and no VAT.
func CalculateTotals(items []Item) Totals {
	return Default().Calculate(items)
}

// Matches reports whether two amounts differ by no more than Epsilon.
func Matches(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}
