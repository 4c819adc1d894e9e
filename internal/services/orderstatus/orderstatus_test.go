package orderstatus

import (
	"context"
	"errors"
	"testing"

	"github.com/ShiraazMoollatjie/goluhn"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{"pending to confirmed", entities.OrderStatusPending, entities.OrderStatusConfirmed, nil},
		{"packed to shipped", entities.OrderStatusPacked, entities.OrderStatusShipped, nil},
		{"delivered to returned", entities.OrderStatusDelivered, entities.OrderStatusReturned, nil},
		{"processing cancelled", entities.OrderStatusProcessing, entities.OrderStatusCancelled, nil},
		{"skip ahead", entities.OrderStatusPending, entities.OrderStatusShipped, ErrInvalidTransition},
		{"shipped cannot cancel", entities.OrderStatusShipped, entities.OrderStatusCancelled, ErrInvalidTransition},
		{"backwards", entities.OrderStatusDelivered, entities.OrderStatusPending, ErrInvalidTransition},
		{"cancelled is final", entities.OrderStatusCancelled, entities.OrderStatusPending, ErrFinalState},
		{"returned is final", entities.OrderStatusReturned, entities.OrderStatusDelivered, ErrFinalState},
		{"unknown target", entities.OrderStatusPending, "lost", ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStorage()

	userID, _ := repo.CreateUser(ctx, "buyer", "hash")
	productID, _ := repo.CreateProduct(ctx, entities.Product{Name: "Lamp", Price: decimal.NewFromInt(300), Stock: 3})

	order := entities.Order{
		Number: goluhn.Generate(12),
		Status: entities.OrderStatusPending,
		UserID: userID,
		Items:  []entities.OrderItem{{ProductID: productID, Quantity: 1, Price: decimal.NewFromInt(300)}},
	}
	if err := repo.CreateOrder(ctx, &order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	service := NewService(repo)

	if _, err := service.Update(ctx, order.Number, userID, entities.OrderStatusShipped); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected customers to be unable to ship, got %v", err)
	}

	if _, err := service.Update(ctx, order.Number, "someone-else", entities.OrderStatusCancelled); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	updated, err := service.Update(ctx, order.Number, "", entities.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if updated.Status != entities.OrderStatusConfirmed {
		t.Errorf("expected confirmed, got %s", updated.Status)
	}

	stored, _ := repo.GetOrderByNumber(ctx, order.Number)
	if stored.Status != entities.OrderStatusConfirmed {
		t.Errorf("expected stored status confirmed, got %s", stored.Status)
	}

	if _, err := service.Update(ctx, "1234", "", entities.OrderStatusConfirmed); !errors.Is(err, ErrInvalidNumber) {
		t.Errorf("expected ErrInvalidNumber, got %v", err)
	}
}

// staleOrderRepo serves the order as it was before a concurrent update.
type staleOrderRepo struct {
	storage.Repository
	snapshot entities.Order
}

func (r staleOrderRepo) GetOrderByNumber(context.Context, string) (entities.Order, error) {
	return r.snapshot, nil
}

func (r staleOrderRepo) WithinTx(ctx context.Context, fn func(storage.Repository) error) error {
	return r.Repository.WithinTx(ctx, func(tx storage.Repository) error {
		return fn(staleOrderRepo{Repository: tx, snapshot: r.snapshot})
	})
}

func TestService_UpdateRejectsConcurrentChange(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStorage()

	userID, _ := repo.CreateUser(ctx, "buyer", "hash")
	order := entities.Order{
		Number: goluhn.Generate(12),
		Status: entities.OrderStatusPending,
		UserID: userID,
	}
	if err := repo.CreateOrder(ctx, &order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	snapshot, _ := repo.GetOrderByNumber(ctx, order.Number)

	if _, err := NewService(repo).Update(ctx, order.Number, userID, entities.OrderStatusCancelled); err != nil {
		t.Fatalf("expected cancellation, got: %v", err)
	}

	stale := NewService(staleOrderRepo{Repository: repo, snapshot: snapshot})
	if _, err := stale.Update(ctx, order.Number, "", entities.OrderStatusConfirmed); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	stored, _ := repo.GetOrderByNumber(ctx, order.Number)
	if stored.Status != entities.OrderStatusCancelled {
		t.Errorf("expected order to stay cancelled, got %s", stored.Status)
	}
}
