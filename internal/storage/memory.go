package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
)

type memoryState struct {
	users        map[string]entities.User
	logins       map[string]string
	memberships  map[string]entities.Membership
	history      []entities.MembershipHistory
	products     map[string]entities.Product
	orders       map[string]entities.Order
	orderNumbers map[string]string
	reviews      map[string]entities.Review
	interactions map[string]struct{}
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:        make(map[string]entities.User),
		logins:       make(map[string]string),
		memberships:  make(map[string]entities.Membership),
		products:     make(map[string]entities.Product),
		orders:       make(map[string]entities.Order),
		orderNumbers: make(map[string]string),
		reviews:      make(map[string]entities.Review),
		interactions: make(map[string]struct{}),
	}
}

func (st *memoryState) clone() *memoryState {
	c := &memoryState{
		users:        make(map[string]entities.User, len(st.users)),
		logins:       make(map[string]string, len(st.logins)),
		memberships:  make(map[string]entities.Membership, len(st.memberships)),
		history:      append([]entities.MembershipHistory(nil), st.history...),
		products:     make(map[string]entities.Product, len(st.products)),
		orders:       make(map[string]entities.Order, len(st.orders)),
		orderNumbers: make(map[string]string, len(st.orderNumbers)),
		reviews:      make(map[string]entities.Review, len(st.reviews)),
		interactions: make(map[string]struct{}, len(st.interactions)),
	}

	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.logins {
		c.logins[k] = v
	}
	for k, v := range st.memberships {
		c.memberships[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.orders {
		c.orders[k] = v
	}
	for k, v := range st.orderNumbers {
		c.orderNumbers[k] = v
	}
	for k, v := range st.reviews {
		c.reviews[k] = v
	}
	for k := range st.interactions {
		c.interactions[k] = struct{}{}
	}

	return c
}

// MemoryStorage keeps everything in process. Transactions work on a copy of
// the state that replaces the live state on commit, and hold the store lock
// for their whole duration, so they are serializable.
type MemoryStorage struct {
	mu    *sync.Mutex
	state *memoryState
	tx    bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		mu:    &sync.Mutex{},
		state: newMemoryState(),
	}
}

func (s *MemoryStorage) lock() func() {
	if s.tx {
		return func() {}
	}

	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStorage) WithinTx(ctx context.Context, fn func(Repository) error) error {
	if s.tx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStorage{mu: s.mu, state: s.state.clone(), tx: true}
	if err := fn(tx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = tx.state

	return nil
}

func (s *MemoryStorage) CreateUser(_ context.Context, login string, passwordHash string) (string, error) {
	defer s.lock()()

	if _, ok := s.state.logins[login]; ok {
		return "", ErrConflict
	}

	user := entities.User{
		ID:        uuid.NewString(),
		Login:     login,
		Password:  passwordHash,
		CreatedAt: time.Now(),
	}

	s.state.users[user.ID] = user
	s.state.logins[login] = user.ID

	return user.ID, nil
}

func (s *MemoryStorage) GetUser(_ context.Context, login string, passwordHash string) (string, error) {
	defer s.lock()()

	userID, ok := s.state.logins[login]
	if !ok || s.state.users[userID].Password != passwordHash {
		return "", ErrNoRows
	}

	return userID, nil
}

func (s *MemoryStorage) GetUserByID(_ context.Context, userID string) (entities.User, error) {
	defer s.lock()()

	user, ok := s.state.users[userID]
	if !ok {
		return entities.User{}, ErrNoRows
	}

	return user, nil
}

func (s *MemoryStorage) IncrementUserPoints(_ context.Context, userID string, delta int) (entities.User, error) {
	defer s.lock()()

	user, ok := s.state.users[userID]
	if !ok {
		return entities.User{}, ErrNoRows
	}

	if user.Points+delta < 0 {
		return entities.User{}, ErrConflict
	}

	user.Points += delta
	s.state.users[userID] = user

	return user, nil
}

func (s *MemoryStorage) SetUserMembership(_ context.Context, userID string, membershipID string) error {
	defer s.lock()()

	user, ok := s.state.users[userID]
	if !ok {
		return ErrNoRows
	}

	if _, ok := s.state.memberships[membershipID]; !ok {
		return ErrConflict
	}

	user.MembershipID = sql.NullString{String: membershipID, Valid: true}
	s.state.users[userID] = user

	return nil
}

func (s *MemoryStorage) CreateMembership(_ context.Context, membership entities.Membership) (string, error) {
	defer s.lock()()

	for _, existing := range s.state.memberships {
		if existing.Title == membership.Title {
			return "", ErrConflict
		}
	}

	membership.ID = uuid.NewString()
	s.state.memberships[membership.ID] = membership

	return membership.ID, nil
}

func (s *MemoryStorage) GetMemberships(_ context.Context) ([]entities.Membership, error) {
	defer s.lock()()

	memberships := make([]entities.Membership, 0, len(s.state.memberships))
	for _, membership := range s.state.memberships {
		memberships = append(memberships, membership)
	}

	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].MinPoints < memberships[j].MinPoints
	})

	return memberships, nil
}

func (s *MemoryStorage) AppendMembershipHistory(_ context.Context, entry entities.MembershipHistory) error {
	defer s.lock()()

	if _, ok := s.state.users[entry.UserID]; !ok {
		return ErrConflict
	}

	if entry.OneShot {
		for _, existing := range s.state.history {
			if existing.OneShot && existing.UserID == entry.UserID && existing.Action == entry.Action {
				return ErrAlreadyAwarded
			}
		}
	}

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	s.state.history = append(s.state.history, entry)

	return nil
}

func (s *MemoryStorage) CountMembershipHistory(_ context.Context, userID string, action string) (int, error) {
	defer s.lock()()

	count := 0
	for _, entry := range s.state.history {
		if entry.UserID == userID && entry.Action == action {
			count++
		}
	}

	return count, nil
}

func (s *MemoryStorage) GetMembershipHistory(_ context.Context, userID string) ([]entities.MembershipHistory, error) {
	defer s.lock()()

	var history []entities.MembershipHistory
	for _, entry := range s.state.history {
		if entry.UserID == userID {
			history = append(history, entry)
		}
	}

	return history, nil
}

func (s *MemoryStorage) CreateProduct(_ context.Context, product entities.Product) (string, error) {
	defer s.lock()()

	if product.Stock < 0 {
		return "", ErrConflict
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	if _, ok := s.state.products[product.ID]; ok {
		return "", ErrConflict
	}

	s.state.products[product.ID] = product

	return product.ID, nil
}

func (s *MemoryStorage) GetProduct(_ context.Context, productID string) (entities.Product, error) {
	defer s.lock()()

	product, ok := s.state.products[productID]
	if !ok {
		return entities.Product{}, ErrNoRows
	}

	return product, nil
}

func (s *MemoryStorage) DecrementProductStock(_ context.Context, productID string, quantity int) error {
	defer s.lock()()

	product, ok := s.state.products[productID]
	if !ok || product.Stock < quantity {
		return ErrInsufficientStock
	}

	product.Stock -= quantity
	s.state.products[productID] = product

	return nil
}

func (s *MemoryStorage) CreateOrder(_ context.Context, order *entities.Order) error {
	defer s.lock()()

	if _, ok := s.state.orderNumbers[order.Number]; ok {
		return ErrConflict
	}

	if _, ok := s.state.users[order.UserID]; !ok {
		return ErrConflict
	}

	now := time.Now()
	order.ID = uuid.NewString()
	order.CreatedAt = now
	order.UpdatedAt = now

	items := make([]entities.OrderItem, len(order.Items))
	for i, item := range order.Items {
		if _, ok := s.state.products[item.ProductID]; !ok {
			return ErrConflict
		}

		item.ID = uuid.NewString()
		item.OrderID = order.ID
		items[i] = item
	}
	order.Items = items

	stored := *order
	stored.Items = append([]entities.OrderItem(nil), items...)
	s.state.orders[order.ID] = stored
	s.state.orderNumbers[order.Number] = order.ID

	return nil
}

func (s *MemoryStorage) GetOrderByNumber(_ context.Context, number string) (entities.Order, error) {
	defer s.lock()()

	orderID, ok := s.state.orderNumbers[number]
	if !ok {
		return entities.Order{}, ErrNoRows
	}

	return s.state.orders[orderID], nil
}

func (s *MemoryStorage) GetUserOrders(_ context.Context, userID string) ([]entities.Order, error) {
	defer s.lock()()

	var orders []entities.Order
	for _, order := range s.state.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

func (s *MemoryStorage) UpdateOrderStatus(_ context.Context, orderID string, from string, to string) error {
	defer s.lock()()

	order, ok := s.state.orders[orderID]
	if !ok {
		return ErrNoRows
	}

	if order.Status != from {
		return ErrConflict
	}

	order.Status = to
	order.UpdatedAt = time.Now()
	s.state.orders[orderID] = order

	return nil
}

func (s *MemoryStorage) SaveReview(_ context.Context, review entities.Review) (bool, error) {
	defer s.lock()()

	if _, ok := s.state.products[review.ProductID]; !ok {
		return false, ErrConflict
	}

	key := review.UserID + "|" + review.ProductID
	now := time.Now()

	existing, ok := s.state.reviews[key]
	if ok {
		existing.Rating = review.Rating
		existing.Comment = review.Comment
		existing.UpdatedAt = now
		s.state.reviews[key] = existing

		return false, nil
	}

	review.ID = uuid.NewString()
	review.CreatedAt = now
	review.UpdatedAt = now
	s.state.reviews[key] = review

	return true, nil
}

func (s *MemoryStorage) RecordInteraction(_ context.Context, userID string, productID string, kind string) (bool, error) {
	defer s.lock()()

	product, ok := s.state.products[productID]
	if !ok {
		return false, ErrNoRows
	}

	switch kind {
	case entities.InteractionView:
		product.Views++
	case entities.InteractionShare:
		product.Shares++
	default:
		return false, fmt.Errorf("unknown interaction kind %q", kind)
	}
	s.state.products[productID] = product

	key := userID + "|" + productID + "|" + kind
	if _, ok := s.state.interactions[key]; ok {
		return false, nil
	}

	s.state.interactions[key] = struct{}{}

	return true, nil
}
