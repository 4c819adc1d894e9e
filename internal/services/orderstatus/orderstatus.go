package orderstatus

import (
	"context"
	"errors"
	"fmt"

	"github.com/ShiraazMoollatjie/goluhn"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
)

var (
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrFinalState        = errors.New("order is in a final state")
	ErrInvalidNumber     = errors.New("invalid order number")
	ErrForbidden         = errors.New("order belongs to another user")
)

var transitions = map[string][]string{
	entities.OrderStatusPending:    {entities.OrderStatusConfirmed, entities.OrderStatusCancelled},
	entities.OrderStatusConfirmed:  {entities.OrderStatusProcessing, entities.OrderStatusCancelled},
	entities.OrderStatusProcessing: {entities.OrderStatusPacked, entities.OrderStatusCancelled},
	entities.OrderStatusPacked:     {entities.OrderStatusShipped, entities.OrderStatusCancelled},
	entities.OrderStatusShipped:    {entities.OrderStatusDelivered},
	entities.OrderStatusDelivered:  {entities.OrderStatusReturned},
}

var finalStates = map[string]bool{
	entities.OrderStatusCancelled: true,
	entities.OrderStatusReturned:  true,
}

func IsValid(status string) bool {
	_, ok := transitions[status]
	return ok || finalStates[status]
}

func CanTransition(from, to string) error {
	if !IsValid(from) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}

	if !IsValid(to) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}

	if finalStates[from] {
		return fmt.Errorf("%w: %s", ErrFinalState, from)
	}

	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

type Service struct {
	repo storage.Repository
}

func NewService(repo storage.Repository) *Service {
	return &Service{repo: repo}
}

// Update moves the order to status. When userID is not empty the order must
// belong to that user and only cancellation is allowed.
func (s *Service) Update(ctx context.Context, number string, userID string, status string) (entities.Order, error) {
	if err := goluhn.Validate(number); err != nil {
		return entities.Order{}, fmt.Errorf("%w: %s", ErrInvalidNumber, number)
	}

	var order entities.Order

	err := s.repo.WithinTx(ctx, func(repo storage.Repository) error {
		var err error

		order, err = repo.GetOrderByNumber(ctx, number)
		if err != nil {
			return err
		}

		if userID != "" {
			if order.UserID != userID {
				return ErrForbidden
			}

			if status != entities.OrderStatusCancelled {
				return fmt.Errorf("%w: customers may only cancel", ErrInvalidTransition)
			}
		}

		if err := CanTransition(order.Status, status); err != nil {
			return err
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, order.Status, status); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return fmt.Errorf("%w: order %s is no longer %s", ErrInvalidTransition, number, order.Status)
			}

			return err
		}

		order.Status = status

		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}

	return order, nil
}
