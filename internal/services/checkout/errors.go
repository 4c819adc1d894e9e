package checkout

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	CodeInvalidQuantity   = "invalid_quantity"
	CodeProductNotFound   = "product_not_found"
	CodePriceMismatch     = "price_mismatch"
	CodeInsufficientStock = "insufficient_stock"
	CodeTotalMismatch     = "total_mismatch"
)

var ErrEmptyCart = errors.New("cart is empty")

type ItemError struct {
	ProductID    string
	Code         string
	CurrentPrice decimal.Decimal
	Available    int
}

func (e ItemError) Error() string {
	switch e.Code {
	case CodePriceMismatch:
		return fmt.Sprintf("product %s: price changed to %s", e.ProductID, e.CurrentPrice.StringFixed(2))
	case CodeInsufficientStock:
		return fmt.Sprintf("product %s: only %d left in stock", e.ProductID, e.Available)
	case CodeProductNotFound:
		return fmt.Sprintf("product %s: not found", e.ProductID)
	case CodeInvalidQuantity:
		return fmt.Sprintf("product %s: quantity must be positive", e.ProductID)
	case CodeTotalMismatch:
		return fmt.Sprintf("order total changed to %s", e.CurrentPrice.StringFixed(2))
	}

	return fmt.Sprintf("product %s: %s", e.ProductID, e.Code)
}

// ValidationError lists every cart line that failed validation.
type ValidationError struct {
	Items []ItemError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cart validation failed: %d invalid items", len(e.Items))
}
