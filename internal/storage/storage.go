package storage

import (
	"context"
	"errors"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
)

var (
	ErrConflict          = errors.New("conflict")
	ErrNoRows            = errors.New("no rows")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyAwarded    = errors.New("points already awarded for action")
)

// Repository is the persistence surface of the storefront. WithinTx runs fn
// against a transactional repository; on a repository that is already inside
// a transaction it joins that transaction instead of opening a new one.
type Repository interface {
	WithinTx(ctx context.Context, fn func(Repository) error) error

	CreateUser(ctx context.Context, login string, passwordHash string) (string, error)
	GetUser(ctx context.Context, login string, passwordHash string) (string, error)
	GetUserByID(ctx context.Context, userID string) (entities.User, error)
	IncrementUserPoints(ctx context.Context, userID string, delta int) (entities.User, error)
	SetUserMembership(ctx context.Context, userID string, membershipID string) error

	CreateMembership(ctx context.Context, membership entities.Membership) (string, error)
	GetMemberships(ctx context.Context) ([]entities.Membership, error)

	AppendMembershipHistory(ctx context.Context, entry entities.MembershipHistory) error
	CountMembershipHistory(ctx context.Context, userID string, action string) (int, error)
	GetMembershipHistory(ctx context.Context, userID string) ([]entities.MembershipHistory, error)

	CreateProduct(ctx context.Context, product entities.Product) (string, error)
	GetProduct(ctx context.Context, productID string) (entities.Product, error)
	DecrementProductStock(ctx context.Context, productID string, quantity int) error

	CreateOrder(ctx context.Context, order *entities.Order) error
	GetOrderByNumber(ctx context.Context, number string) (entities.Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]entities.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, from string, to string) error

	SaveReview(ctx context.Context, review entities.Review) (bool, error)
	RecordInteraction(ctx context.Context, userID string, productID string, kind string) (bool, error)
}
