package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/ShiraazMoollatjie/goluhn"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/notifier"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/calculator"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/points"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// failingStock makes the stock decrement of one product fail inside
// transactions, after validation has already passed.
type failingStock struct {
	storage.Repository
	productID string
}

func (f failingStock) WithinTx(ctx context.Context, fn func(storage.Repository) error) error {
	return f.Repository.WithinTx(ctx, func(repo storage.Repository) error {
		return fn(failingStock{Repository: repo, productID: f.productID})
	})
}

func (f failingStock) DecrementProductStock(ctx context.Context, productID string, quantity int) error {
	if productID == f.productID {
		return storage.ErrInsufficientStock
	}

	return f.Repository.DecrementProductStock(ctx, productID, quantity)
}

type fixture struct {
	repo    *storage.MemoryStorage
	engine  *points.Engine
	service *Service
	userID  string
	mug     string
	kettle  string
	teapot  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	repo := storage.NewMemoryStorage()

	bronze, err := repo.CreateMembership(ctx, entities.Membership{Title: "Bronze", MinPoints: 0, MaxPoints: 499})
	if err != nil {
		t.Fatalf("create membership: %v", err)
	}

	userID, err := repo.CreateUser(ctx, "shopper", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := repo.SetUserMembership(ctx, userID, bronze); err != nil {
		t.Fatalf("enrol user: %v", err)
	}

	product := func(name, price string, stock int) string {
		id, err := repo.CreateProduct(ctx, entities.Product{Name: name, Price: dec(price), Stock: stock})
		if err != nil {
			t.Fatalf("create product: %v", err)
		}
		return id
	}

	engine := points.NewEngine(repo, points.DefaultRules(), notifier.LogNotifier{})

	return &fixture{
		repo:    repo,
		engine:  engine,
		service: NewService(repo, engine, calculator.Default()),
		userID:  userID,
		mug:     product("Mug", "150.00", 10),
		kettle:  product("Kettle", "250.00", 1),
		teapot:  product("Teapot", "80.00", 5),
	}
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()

	product, err := f.repo.GetProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	return product.Stock
}

func TestService_Validate(t *testing.T) {
	f := newFixture(t)

	quote, err := f.service.Validate(context.Background(), []CartItem{
		{ProductID: f.mug, Quantity: 2, Price: dec("150")},
		{ProductID: f.kettle, Quantity: 1, Price: dec("250.004")},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !quote.Totals.Subtotal.Equal(dec("550")) || !quote.Totals.ShippingCost.IsZero() {
		t.Errorf("unexpected totals: %+v", quote.Totals)
	}

	if !quote.Items[1].Price.Equal(dec("250")) {
		t.Errorf("expected catalog price to be captured, got %s", quote.Items[1].Price)
	}
}

func TestService_ValidateReportsEveryBadItem(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Validate(context.Background(), []CartItem{
		{ProductID: f.mug, Quantity: 1, Price: dec("140")},
		{ProductID: f.kettle, Quantity: 2, Price: dec("250")},
		{ProductID: "missing", Quantity: 1, Price: dec("10")},
		{ProductID: f.teapot, Quantity: 0, Price: dec("80")},
		{ProductID: f.teapot, Quantity: 1, Price: dec("80")},
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	want := map[string]string{
		f.mug:     CodePriceMismatch,
		f.kettle:  CodeInsufficientStock,
		"missing": CodeProductNotFound,
		f.teapot:  CodeInvalidQuantity,
	}

	if len(validationErr.Items) != len(want) {
		t.Fatalf("expected %d item errors, got %+v", len(want), validationErr.Items)
	}

	for _, item := range validationErr.Items {
		if want[item.ProductID] != item.Code {
			t.Errorf("product %s: expected %s, got %s", item.ProductID, want[item.ProductID], item.Code)
		}
	}
}

func TestService_ValidateEmptyCart(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Validate(context.Background(), nil); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
}

func TestService_PlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clientTotal := dec("550")

	result, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
		UserID: f.userID,
		Items: []CartItem{
			{ProductID: f.mug, Quantity: 2, Price: dec("150")},
			{ProductID: f.kettle, Quantity: 1, Price: dec("250")},
		},
		ClientTotal: &clientTotal,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if err := goluhn.Validate(result.Order.Number); err != nil {
		t.Errorf("expected luhn valid order number, got %s", result.Order.Number)
	}

	if result.Order.Status != entities.OrderStatusPending {
		t.Errorf("expected pending order, got %s", result.Order.Status)
	}

	if !result.Order.TotalAmount.Equal(dec("550")) {
		t.Errorf("expected total 550, got %s", result.Order.TotalAmount)
	}

	if f.stock(t, f.mug) != 8 || f.stock(t, f.kettle) != 0 {
		t.Errorf("unexpected stock: mug %d, kettle %d", f.stock(t, f.mug), f.stock(t, f.kettle))
	}

	if result.Points.PointsAwarded != 55 {
		t.Errorf("expected 55 points, got %d", result.Points.PointsAwarded)
	}

	user, _ := f.repo.GetUserByID(ctx, f.userID)
	if user.Points != 55 {
		t.Errorf("expected user to have 55 points, got %d", user.Points)
	}

	orders, _ := f.repo.GetUserOrders(ctx, f.userID)
	if len(orders) != 1 || len(orders[0].Items) != 2 {
		t.Fatalf("expected one order with two items, got %+v", orders)
	}
}

func TestService_PlaceOrderRejectsClientTotalMismatch(t *testing.T) {
	f := newFixture(t)
	clientTotal := dec("150")

	_, err := f.service.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID:      f.userID,
		Items:       []CartItem{{ProductID: f.mug, Quantity: 1, Price: dec("150")}},
		ClientTotal: &clientTotal,
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Items[0].Code != CodeTotalMismatch {
		t.Fatalf("expected total mismatch, got %v", err)
	}

	if f.stock(t, f.mug) != 10 {
		t.Errorf("expected stock untouched, got %d", f.stock(t, f.mug))
	}
}

func TestService_PlaceOrderRollsBackOnStockFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	service := NewService(failingStock{Repository: f.repo, productID: f.kettle}, f.engine, calculator.Default())

	_, err := service.PlaceOrder(ctx, PlaceOrderRequest{
		UserID: f.userID,
		Items: []CartItem{
			{ProductID: f.mug, Quantity: 3, Price: dec("150")},
			{ProductID: f.kettle, Quantity: 1, Price: dec("250")},
		},
	})
	if !errors.Is(err, storage.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if got := f.stock(t, f.mug); got != 10 {
		t.Errorf("expected mug stock 10 after rollback, got %d", got)
	}

	orders, _ := f.repo.GetUserOrders(ctx, f.userID)
	if len(orders) != 0 {
		t.Errorf("expected no orders after rollback, got %d", len(orders))
	}

	user, _ := f.repo.GetUserByID(ctx, f.userID)
	if user.Points != 0 {
		t.Errorf("expected no points after rollback, got %d", user.Points)
	}

	history, _ := f.repo.GetMembershipHistory(ctx, f.userID)
	if len(history) != 0 {
		t.Errorf("expected no history after rollback, got %+v", history)
	}
}
