package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name     string
		items    []Item
		subtotal string
		shipping string
		total    string
	}{
		{
			name:     "free shipping above threshold",
			items:    []Item{{Quantity: 2, Price: dec("150")}, {Quantity: 1, Price: dec("250")}},
			subtotal: "550",
			shipping: "0",
			total:    "550",
		},
		{
			name:     "just below threshold",
			items:    []Item{{Quantity: 1, Price: dec("499.99")}},
			subtotal: "499.99",
			shipping: "99",
			total:    "598.99",
		},
		{
			name:     "exactly at threshold",
			items:    []Item{{Quantity: 4, Price: dec("125.00")}},
			subtotal: "500",
			shipping: "0",
			total:    "500",
		},
		{
			name:     "empty cart",
			items:    nil,
			subtotal: "0",
			shipping: "99",
			total:    "99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := CalculateTotals(tt.items)

			if !totals.Subtotal.Equal(dec(tt.subtotal)) {
				t.Errorf("expected subtotal %s, got %s", tt.subtotal, totals.Subtotal)
			}
			if !totals.ShippingCost.Equal(dec(tt.shipping)) {
				t.Errorf("expected shipping %s, got %s", tt.shipping, totals.ShippingCost)
			}
			if !totals.VATAmount.IsZero() {
				t.Errorf("expected zero VAT, got %s", totals.VATAmount)
			}
			if !totals.TotalAmount.Equal(dec(tt.total)) {
				t.Errorf("expected total %s, got %s", tt.total, totals.TotalAmount)
			}
		})
	}
}

func TestCalculatorWithVAT(t *testing.T) {
	calc := New(dec("1000"), dec("50"), RateVAT(dec("0.15")))

	totals := calc.Calculate([]Item{{Quantity: 3, Price: dec("33.33")}})

	if !totals.Subtotal.Equal(dec("99.99")) {
		t.Fatalf("expected subtotal 99.99, got %s", totals.Subtotal)
	}
	if !totals.VATAmount.Equal(dec("15")) {
		t.Errorf("expected VAT 15, got %s", totals.VATAmount)
	}
	if !totals.TotalAmount.Equal(dec("164.99")) {
		t.Errorf("expected total 164.99, got %s", totals.TotalAmount)
	}
}

func TestMatches(t *testing.T) {
	if !Matches(dec("10.00"), dec("10.01")) {
		t.Error("expected 0.01 difference to match")
	}
	if Matches(dec("10.00"), dec("10.02")) {
		t.Error("expected 0.02 difference not to match")
	}
}
