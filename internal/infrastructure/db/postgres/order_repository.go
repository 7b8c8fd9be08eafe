package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

// OrderRepository persists orders in the orders table. Soft deletion flips
// the deleted flag; rows are never removed.
type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order and returns its generated id.
func (r *OrderRepository) Create(ctx context.Context, createdDate time.Time, customerID, loggedByID *int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO orders (created_date, customer_id, logged_by_id, deleted)
		VALUES ($1, $2, $3, FALSE)
		RETURNING order_id
	`, createdDate, customerID, loggedByID).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.ErrPersonNotFound
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

func (r *OrderRepository) ByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.Order
	err := r.db.GetContext(ctx, &o, `
		SELECT order_id, created_date, start_date, end_date, customer_id, logged_by_id, deleted
		FROM orders
		WHERE order_id = $1 AND (deleted = FALSE OR $2)
	`, id, includeDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order %d: %w", id, err)
	}
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context, includeDeleted bool) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	orders := []domain.Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT order_id, created_date, start_date, end_date, customer_id, logged_by_id, deleted
		FROM orders
		WHERE deleted = FALSE OR $1
		ORDER BY order_id
	`, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateDates sets the start and end dates of a live order. The created date
// column is deliberately untouched.
func (r *OrderRepository) UpdateDates(ctx context.Context, id int64, start, end *time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET start_date = $2, end_date = $3
		WHERE order_id = $1 AND deleted = FALSE
	`, id, start, end)
	if err != nil {
		return false, fmt.Errorf("update order %d dates: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *OrderRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET deleted = TRUE
		WHERE order_id = $1 AND deleted = FALSE
	`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete order %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
