package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/ShiraazMoollatjie/goluhn"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/calculator"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/points"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"github.com/shopspring/decimal"
)

const orderNumberLength = 12

type CartItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Quote is a validated cart: lines carry the catalog price captured at
// validation time.
type Quote struct {
	Items  []entities.OrderItem
	Totals calculator.Totals
}

type PlaceOrderRequest struct {
	UserID string
	Items  []CartItem
	// ClientTotal is the total shown to the user, if any. It must match the
	// server recompute.
	ClientTotal *decimal.Decimal
}

type PlaceOrderResult struct {
	Order  entities.Order
	Totals calculator.Totals
	Points points.Result
}

type Service struct {
	repo       storage.Repository
	engine     *points.Engine
	calculator calculator.Calculator
}

func NewService(repo storage.Repository, engine *points.Engine, calc calculator.Calculator) *Service {
	return &Service{
		repo:       repo,
		engine:     engine,
		calculator: calc,
	}
}

// Validate checks every line against the current catalog. A stale price or
// short stock is reported, never corrected.
func (s *Service) Validate(ctx context.Context, items []CartItem) (Quote, error) {
	return s.validate(ctx, s.repo, items)
}

func (s *Service) validate(ctx context.Context, repo storage.Repository, items []CartItem) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, ErrEmptyCart
	}

	var (
		invalid   []ItemError
		lines     = make([]entities.OrderItem, 0, len(items))
		requested = make(map[string]int, len(items))
	)

	for _, item := range items {
		if item.Quantity <= 0 {
			invalid = append(invalid, ItemError{ProductID: item.ProductID, Code: CodeInvalidQuantity})
			continue
		}

		product, err := repo.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrNoRows) {
				invalid = append(invalid, ItemError{ProductID: item.ProductID, Code: CodeProductNotFound})
				continue
			}

			return Quote{}, fmt.Errorf("error get product %s: %w", item.ProductID, err)
		}

		if !calculator.Matches(item.Price, product.Price) {
			invalid = append(invalid, ItemError{
				ProductID:    item.ProductID,
				Code:         CodePriceMismatch,
				CurrentPrice: product.Price,
			})
			continue
		}

		requested[item.ProductID] += item.Quantity
		if requested[item.ProductID] > product.Stock {
			invalid = append(invalid, ItemError{
				ProductID: item.ProductID,
				Code:      CodeInsufficientStock,
				Available: product.Stock,
			})
			continue
		}

		lines = append(lines, entities.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
	}

	if len(invalid) > 0 {
		return Quote{}, &ValidationError{Items: invalid}
	}

	calcItems := make([]calculator.Item, 0, len(lines))
	for _, line := range lines {
		calcItems = append(calcItems, calculator.Item{Quantity: line.Quantity, Price: line.Price})
	}

	return Quote{
		Items:  lines,
		Totals: s.calculator.Calculate(calcItems),
	}, nil
}

// PlaceOrder validates the cart, creates the order, decrements stock and awards
// purchase points in a single transaction. Nothing is persisted unless every
// step succeeds.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResult, error) {
	var result PlaceOrderResult

	err := s.repo.WithinTx(ctx, func(repo storage.Repository) error {
		quote, err := s.validate(ctx, repo, req.Items)
		if err != nil {
			return err
		}

		if req.ClientTotal != nil && !calculator.Matches(*req.ClientTotal, quote.Totals.TotalAmount) {
			return &ValidationError{Items: []ItemError{{
				Code:         CodeTotalMismatch,
				CurrentPrice: quote.Totals.TotalAmount,
			}}}
		}

		order := entities.Order{
			Number:       goluhn.Generate(orderNumberLength),
			Status:       entities.OrderStatusPending,
			UserID:       req.UserID,
			TotalAmount:  quote.Totals.TotalAmount,
			ShippingCost: quote.Totals.ShippingCost,
			VATAmount:    quote.Totals.VATAmount,
			Items:        quote.Items,
		}

		if err := repo.CreateOrder(ctx, &order); err != nil {
			return fmt.Errorf("error create order: %w", err)
		}

		for _, item := range order.Items {
			if err := repo.DecrementProductStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("error decrement stock for product %s: %w", item.ProductID, err)
			}
		}

		award, err := s.engine.AwardIn(ctx, repo, points.Request{
			UserID:    req.UserID,
			Action:    points.ActionPurchaseCompleted,
			Label:     fmt.Sprintf("Purchase completed for order %s", order.Number),
			Amount:    order.TotalAmount,
			RelatedID: order.ID,
		})
		if err != nil {
			return err
		}

		result = PlaceOrderResult{
			Order:  order,
			Totals: quote.Totals,
			Points: award,
		}

		return nil
	})
	if err != nil {
		return PlaceOrderResult{}, err
	}

	s.engine.Notify(ctx, result.Points)

	return result, nil
}
