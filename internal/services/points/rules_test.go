package points

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRulesResolve(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name   string
		action string
		amount string
		want   int
	}{
		{"flat ignores amount", ActionDailyLogin, "1000", 2},
		{"review bonus", ActionReviewWritten, "0", 20},
		{"purchase floors down", ActionPurchaseCompleted, "599.99", 59},
		{"purchase exact", ActionPurchaseCompleted, "550", 55},
		{"shopping rate", ActionShopping, "99.99", 4},
		{"tiny purchase yields zero", ActionPurchaseCompleted, "9.99", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rules.Resolve(tt.action, decimal.RequireFromString(tt.amount))
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %d points, got %d", tt.want, got)
			}
		})
	}
}

func TestRulesResolveUnknownAction(t *testing.T) {
	_, err := DefaultRules().Resolve("birthday", decimal.Zero)
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}

func TestRulesResolveNegativeAmount(t *testing.T) {
	_, err := DefaultRules().Resolve(ActionShopping, decimal.NewFromInt(-10))
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestRulesLabel(t *testing.T) {
	rules := DefaultRules()

	if got := rules.Label(ActionSignupBonus); got != "Signup bonus" {
		t.Errorf("expected Signup bonus, got %s", got)
	}
	if got := rules.Label("custom"); got != "custom" {
		t.Errorf("expected fallback to the key, got %s", got)
	}
}
