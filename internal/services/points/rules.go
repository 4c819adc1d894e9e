package points

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	ActionSignupBonus       = "signup_bonus"
	ActionDailyLogin        = "daily_login"
	ActionReviewWritten     = "review_written"
	ActionProductViewed     = "product_viewed"
	ActionProductShared     = "product_shared"
	ActionPurchaseCompleted = "purchase_completed"
	ActionShopping          = "shopping"
)

var (
	ErrInvalidAction = errors.New("invalid points action")
	ErrInvalidAmount = errors.New("invalid amount for points action")
)

// Rule is either Flat or PerAmount.
type Rule interface {
	rule()
}

// Flat awards a constant number of points.
type Flat int

// PerAmount awards floor(amount * Rate) points.
type PerAmount struct {
	Rate decimal.Decimal
}

func (Flat) rule()      {}
func (PerAmount) rule() {}

type Entry struct {
	Label string
	Rule  Rule
}

// Rules maps an action key to its rule.
type Rules map[string]Entry

func DefaultRules() Rules {
	return Rules{
		ActionSignupBonus:       {Label: "Signup bonus", Rule: Flat(50)},
		ActionDailyLogin:        {Label: "Daily login", Rule: Flat(2)},
		ActionReviewWritten:     {Label: "Review written", Rule: Flat(20)},
		ActionProductViewed:     {Label: "Product viewed", Rule: Flat(1)},
		ActionProductShared:     {Label: "Product shared", Rule: Flat(5)},
		ActionPurchaseCompleted: {Label: "Purchase completed", Rule: PerAmount{Rate: decimal.New(1, -1)}},
		ActionShopping:          {Label: "Shopping", Rule: PerAmount{Rate: decimal.New(5, -2)}},
	}
}

// Resolve returns the non-negative point delta for action. Fractional points
// are floored so a user is never over-credited.
func (r Rules) Resolve(action string, amount decimal.Decimal) (int, error) {
	entry, ok := r[action]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	switch rule := entry.Rule.(type) {
	case Flat:
		if rule < 0 {
			return 0, fmt.Errorf("%w: %q has negative points", ErrInvalidAction, action)
		}

		return int(rule), nil
	case PerAmount:
		if amount.IsNegative() {
			return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
		}

		points := amount.Mul(rule.Rate).Floor()
		if points.IsNegative() {
			return 0, nil
		}

		return int(points.IntPart()), nil
	}

	return 0, fmt.Errorf("%w: %q has no rule", ErrInvalidAction, action)
}

func (r Rules) Label(action string) string {
	if entry, ok := r[action]; ok && entry.Label != "" {
		return entry.Label
	}

	return action
}
