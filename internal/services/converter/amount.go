package converter

import "github.com/shopspring/decimal"

const amountPlaces = 2

// FormatAmount converts a money amount to the float used in JSON responses.
func FormatAmount(amount decimal.Decimal) float64 {
	f, _ := amount.Round(amountPlaces).Float64()
	return f
}

// ParseAmount converts a client supplied float into a money amount rounded to
// cents.
func ParseAmount(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(amountPlaces)
}
