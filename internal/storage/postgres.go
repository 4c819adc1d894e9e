package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
)

type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type PostgresStorage struct {
	db *sqlx.DB
	q  queryer
	tx bool
}

func NewPostgresStorage(db *sqlx.DB) (Repository, error) {
	storage := &PostgresStorage{db: db, q: db}

	err := storage.runMigrations(context.Background())
	if err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *PostgresStorage) WithinTx(ctx context.Context, fn func(Repository) error) error {
	if s.tx {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer tx.Rollback()

	if err := fn(&PostgresStorage{db: s.db, q: tx, tx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (s *PostgresStorage) CreateUser(ctx context.Context, login string, passwordHash string) (string, error) {
	var userID string

	row := s.q.QueryRowxContext(
		ctx,
		`INSERT INTO users (login, password)
		VALUES ($1, $2) RETURNING id;`,
		login, passwordHash,
	)

	if err := row.Err(); err != nil {
		return "", mapIntegrityError(err)
	}

	if err := row.Scan(&userID); err != nil {
		return "", mapIntegrityError(err)
	}

	return userID, nil
}

func (s *PostgresStorage) GetUser(ctx context.Context, login string, passwordHash string) (string, error) {
	var userID string

	row := s.q.QueryRowxContext(ctx, "SELECT id FROM users WHERE login = $1 AND password = $2;", login, passwordHash)

	if err := row.Err(); err != nil {
		return "", err
	}

	err := row.Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoRows
		}

		return "", err
	}

	return userID, nil
}

func (s *PostgresStorage) GetUserByID(ctx context.Context, userID string) (entities.User, error) {
	var user entities.User

	err := s.q.GetContext(
		ctx,
		&user,
		"SELECT id, login, password, points, membership_id, created_at FROM users WHERE id = $1;",
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, ErrNoRows
		}

		return user, err
	}

	return user, nil
}

// IncrementUserPoints returns the user row as it is after the update. The row
// stays locked until the surrounding transaction ends, so its membership is
// the one later statements of that transaction must compare against.
func (s *PostgresStorage) IncrementUserPoints(ctx context.Context, userID string, delta int) (entities.User, error) {
	var user entities.User

	err := s.q.GetContext(
		ctx,
		&user,
		`UPDATE users SET points = points + $1 WHERE id = $2
		RETURNING id, login, password, points, membership_id, created_at;`,
		delta, userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, ErrNoRows
		}

		return user, err
	}

	return user, nil
}

func (s *PostgresStorage) SetUserMembership(ctx context.Context, userID string, membershipID string) error {
	result, err := s.q.ExecContext(ctx, `UPDATE users SET membership_id = $1 WHERE id = $2;`, membershipID, userID)
	if err != nil {
		return mapIntegrityError(err)
	}

	return expectAffected(result)
}

func (s *PostgresStorage) CreateMembership(ctx context.Context, membership entities.Membership) (string, error) {
	var membershipID string

	row := s.q.QueryRowxContext(
		ctx,
		`INSERT INTO memberships (title, min_points, max_points, benefits, popular, crown)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		membership.Title, membership.MinPoints, membership.MaxPoints, membership.Benefits, membership.Popular, membership.Crown,
	)

	if err := row.Err(); err != nil {
		return "", mapIntegrityError(err)
	}

	if err := row.Scan(&membershipID); err != nil {
		return "", mapIntegrityError(err)
	}

	return membershipID, nil
}

func (s *PostgresStorage) GetMemberships(ctx context.Context) ([]entities.Membership, error) {
	var memberships []entities.Membership

	err := s.q.SelectContext(
		ctx,
		&memberships,
		"SELECT id, title, min_points, max_points, benefits, popular, crown FROM memberships ORDER BY min_points ASC;",
	)
	if err != nil {
		return nil, err
	}

	return memberships, nil
}

func (s *PostgresStorage) AppendMembershipHistory(ctx context.Context, entry entities.MembershipHistory) error {
	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO membership_history (user_id, action, points, one_shot)
		VALUES ($1, $2, $3, $4);`,
		entry.UserID, entry.Action, entry.Points, entry.OneShot,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyAwarded
		}

		return mapIntegrityError(err)
	}

	return nil
}

func (s *PostgresStorage) CountMembershipHistory(ctx context.Context, userID string, action string) (int, error) {
	var count int

	err := s.q.GetContext(
		ctx,
		&count,
		"SELECT COUNT(*) FROM membership_history WHERE user_id = $1 AND action = $2;",
		userID, action,
	)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (s *PostgresStorage) GetMembershipHistory(ctx context.Context, userID string) ([]entities.MembershipHistory, error) {
	var history []entities.MembershipHistory

	err := s.q.SelectContext(
		ctx,
		&history,
		"SELECT id, user_id, action, points, one_shot, created_at FROM membership_history WHERE user_id = $1 ORDER BY created_at ASC;",
		userID,
	)
	if err != nil {
		return nil, err
	}

	return history, nil
}

func (s *PostgresStorage) CreateProduct(ctx context.Context, product entities.Product) (string, error) {
	var productID string

	row := s.q.QueryRowxContext(
		ctx,
		`INSERT INTO products (id, name, price, stock)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4) RETURNING id;`,
		product.ID, product.Name, product.Price, product.Stock,
	)

	if err := row.Err(); err != nil {
		return "", mapIntegrityError(err)
	}

	if err := row.Scan(&productID); err != nil {
		return "", mapIntegrityError(err)
	}

	return productID, nil
}

func (s *PostgresStorage) GetProduct(ctx context.Context, productID string) (entities.Product, error) {
	var product entities.Product

	if !isUUID(productID) {
		return product, ErrNoRows
	}

	err := s.q.GetContext(
		ctx,
		&product,
		"SELECT id, name, price, stock, views, shares FROM products WHERE id = $1;",
		productID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return product, ErrNoRows
		}

		return product, err
	}

	return product, nil
}

func (s *PostgresStorage) DecrementProductStock(ctx context.Context, productID string, quantity int) error {
	if !isUUID(productID) {
		return ErrInsufficientStock
	}

	result, err := s.q.ExecContext(
		ctx,
		`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1;`,
		quantity, productID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, order *entities.Order) error {
	row := s.q.QueryRowxContext(
		ctx,
		`INSERT INTO orders (number, status, user_id, total_amount, shipping_cost, vat_amount)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at;`,
		order.Number, order.Status, order.UserID, order.TotalAmount, order.ShippingCost, order.VATAmount,
	)

	if err := row.Err(); err != nil {
		return mapIntegrityError(err)
	}

	if err := row.Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return mapIntegrityError(err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		row := s.q.QueryRowxContext(
			ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4) RETURNING id;`,
			item.OrderID, item.ProductID, item.Quantity, item.Price,
		)

		if err := row.Err(); err != nil {
			return mapIntegrityError(err)
		}

		if err := row.Scan(&item.ID); err != nil {
			return mapIntegrityError(err)
		}
	}

	return nil
}

func (s *PostgresStorage) GetOrderByNumber(ctx context.Context, number string) (entities.Order, error) {
	var order entities.Order

	err := s.q.GetContext(
		ctx,
		&order,
		`SELECT id, number, created_at, updated_at, status, user_id, total_amount, shipping_cost, vat_amount
		FROM orders WHERE number = $1;`,
		number,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order, ErrNoRows
		}

		return order, err
	}

	orders := []entities.Order{order}
	if err := s.attachItems(ctx, orders); err != nil {
		return order, err
	}

	return orders[0], nil
}

func (s *PostgresStorage) GetUserOrders(ctx context.Context, userID string) ([]entities.Order, error) {
	var orders []entities.Order

	err := s.q.SelectContext(
		ctx,
		&orders,
		`SELECT id, number, created_at, updated_at, status, user_id, total_amount, shipping_cost, vat_amount
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (s *PostgresStorage) attachItems(ctx context.Context, orders []entities.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[string]int, len(orders))
	for i, order := range orders {
		ids = append(ids, order.ID)
		byID[order.ID] = i
	}

	var items []entities.OrderItem

	err := s.q.SelectContext(
		ctx,
		&items,
		"SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = ANY($1::uuid[]);",
		pq.Array(ids),
	)
	if err != nil {
		return err
	}

	for _, item := range items {
		i := byID[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}

	return nil
}

// UpdateOrderStatus moves the order from one status to another. ErrConflict
// means the order no longer has the from status.
func (s *PostgresStorage) UpdateOrderStatus(ctx context.Context, orderID string, from string, to string) error {
	result, err := s.q.ExecContext(
		ctx,
		`UPDATE orders SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 AND status = $3;`,
		to, orderID, from,
	)
	if err != nil {
		return err
	}

	if err := expectAffected(result); err != nil {
		return ErrConflict
	}

	return nil
}

func (s *PostgresStorage) SaveReview(ctx context.Context, review entities.Review) (bool, error) {
	var created bool

	if !isUUID(review.ProductID) {
		return false, ErrConflict
	}

	row := s.q.QueryRowxContext(
		ctx,
		`INSERT INTO reviews (user_id, product_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = CURRENT_TIMESTAMP
		RETURNING (xmax = 0);`,
		review.UserID, review.ProductID, review.Rating, review.Comment,
	)

	if err := row.Err(); err != nil {
		return false, mapIntegrityError(err)
	}

	if err := row.Scan(&created); err != nil {
		return false, mapIntegrityError(err)
	}

	return created, nil
}

func (s *PostgresStorage) RecordInteraction(ctx context.Context, userID string, productID string, kind string) (bool, error) {
	column, err := interactionColumn(kind)
	if err != nil {
		return false, err
	}

	if !isUUID(productID) {
		return false, ErrNoRows
	}

	result, err := s.q.ExecContext(ctx, `UPDATE products SET `+column+` = `+column+` + 1 WHERE id = $1;`, productID)
	if err != nil {
		return false, err
	}

	if err := expectAffected(result); err != nil {
		return false, err
	}

	result, err = s.q.ExecContext(
		ctx,
		`INSERT INTO product_interactions (user_id, product_id, kind)
		VALUES ($1, $2, $3) ON CONFLICT DO NOTHING;`,
		userID, productID, kind,
	)
	if err != nil {
		return false, mapIntegrityError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func interactionColumn(kind string) (string, error) {
	switch kind {
	case entities.InteractionView:
		return "views", nil
	case entities.InteractionShare:
		return "shares", nil
	}

	return "", fmt.Errorf("unknown interaction kind %q", kind)
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNoRows
	}

	return nil
}

// isUUID reports whether id can be compared to a uuid column. Anything else is
// rejected by Postgres with invalid_text_representation.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgerrcode.InvalidTextRepresentation
}

func mapIntegrityError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pgerrcode.IsIntegrityConstraintViolation(string(pqErr.Code)) {
		return ErrConflict
	}

	return err
}

func (s *PostgresStorage) runMigrations(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	for _, statement := range migrations {
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	return tx.Commit()
}

var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS memberships(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		title TEXT NOT NULL UNIQUE,
		min_points INT NOT NULL,
		max_points INT NOT NULL,
		benefits TEXT[] NOT NULL DEFAULT '{}',
		popular BOOLEAN NOT NULL DEFAULT FALSE,
		crown TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS users(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		login TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		points INT NOT NULL DEFAULT 0 CHECK (points >= 0),
		membership_id uuid NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_membership FOREIGN KEY(membership_id) REFERENCES memberships(id)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS membership_history(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		user_id uuid NOT NULL,
		action TEXT NOT NULL,
		points INT NOT NULL DEFAULT 0,
		one_shot BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_user FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	`,
	`CREATE INDEX IF NOT EXISTS membership_history_user_action ON membership_history(user_id, action);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS membership_history_one_shot ON membership_history(user_id, action) WHERE one_shot;`,
	`
	CREATE TABLE IF NOT EXISTS products(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(12, 2) NOT NULL,
		stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
		views INT NOT NULL DEFAULT 0,
		shares INT NOT NULL DEFAULT 0
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS orders(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		number VARCHAR NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		status VARCHAR NOT NULL,
		user_id uuid NOT NULL,
		total_amount NUMERIC(12, 2) NOT NULL,
		shipping_cost NUMERIC(12, 2) NOT NULL,
		vat_amount NUMERIC(12, 2) NOT NULL,
		CONSTRAINT fk_user FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS order_items(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		order_id uuid NOT NULL,
		product_id uuid NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		price NUMERIC(12, 2) NOT NULL,
		CONSTRAINT fk_order FOREIGN KEY(order_id) REFERENCES orders(id) ON DELETE CASCADE,
		CONSTRAINT fk_product FOREIGN KEY(product_id) REFERENCES products(id)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS reviews(
		id uuid DEFAULT gen_random_uuid() PRIMARY KEY,
		user_id uuid NOT NULL,
		product_id uuid NOT NULL,
		rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, product_id),
		CONSTRAINT fk_user FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_product FOREIGN KEY(product_id) REFERENCES products(id) ON DELETE CASCADE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS product_interactions(
		user_id uuid NOT NULL,
		product_id uuid NOT NULL,
		kind VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, product_id, kind),
		CONSTRAINT fk_user FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_product FOREIGN KEY(product_id) REFERENCES products(id) ON DELETE CASCADE
	);
	`,
}
