package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
)

// OrderItemRepository persists order↔item relations in the order_items table,
// keyed by the (order_id, item_id) pair. The repository runs against either
// the pool or a transaction; Transact hands callbacks a transaction-scoped
// copy so a detach and attach can commit or roll back together.
type OrderItemRepository struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

func NewOrderItemRepository(db *sqlx.DB) *OrderItemRepository {
	return &OrderItemRepository{db: db, ext: db}
}

// Attach activates the relation between an order and an item. An existing
// active relation for the item on any order fails with domain.ErrItemAttached.
// A soft-deleted relation for this exact pair is revived; otherwise a fresh
// row is inserted.
func (r *OrderItemRepository) Attach(ctx context.Context, orderID, itemID int64) (*domain.OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var attachedTo int64
	err := sqlx.GetContext(ctx, r.ext, &attachedTo, `
		SELECT order_id FROM order_items
		WHERE item_id = $1 AND deleted = FALSE
	`, itemID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("item %d on order %d: %w", itemID, attachedTo, domain.ErrItemAttached)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("attach check item %d: %w", itemID, err)
	}

	res, err := r.ext.ExecContext(ctx, `
		UPDATE order_items
		SET deleted = FALSE
		WHERE order_id = $1 AND item_id = $2 AND deleted = TRUE
	`, orderID, itemID)
	if err != nil {
		return nil, fmt.Errorf("revive relation %d/%d: %w", orderID, itemID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = r.ext.ExecContext(ctx, `
			INSERT INTO order_items (order_id, item_id, deleted)
			VALUES ($1, $2, FALSE)
		`, orderID, itemID)
		if err != nil {
			if mapped := relationInsertError(err); mapped != nil {
				return nil, mapped
			}
			return nil, fmt.Errorf("insert relation %d/%d: %w", orderID, itemID, err)
		}
	}

	return &domain.OrderItem{OrderID: orderID, ItemID: itemID}, nil
}

// relationInsertError maps a foreign key violation on the relation insert to
// the parent that is missing. Either side can be the violated one.
func relationInsertError(err error) error {
	switch {
	case !isForeignKeyViolation(err):
		return nil
	case violatedConstraint(err) == "order_items_item_id_fkey":
		return domain.ErrItemNotFound
	default:
		return domain.ErrOrderNotFound
	}
}

// Detach soft-deletes the active relation for the pair. Returns false when
// none is active.
func (r *OrderItemRepository) Detach(ctx context.Context, orderID, itemID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.ext.ExecContext(ctx, `
		UPDATE order_items
		SET deleted = TRUE
		WHERE order_id = $1 AND item_id = $2 AND deleted = FALSE
	`, orderID, itemID)
	if err != nil {
		return false, fmt.Errorf("detach relation %d/%d: %w", orderID, itemID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *OrderItemRepository) IsAttached(ctx context.Context, orderID, itemID int64, includeDeleted bool) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var exists bool
	err := sqlx.GetContext(ctx, r.ext, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM order_items
			WHERE order_id = $1 AND item_id = $2 AND (deleted = FALSE OR $3)
		)
	`, orderID, itemID, includeDeleted)
	if err != nil {
		return false, fmt.Errorf("relation check %d/%d: %w", orderID, itemID, err)
	}
	return exists, nil
}

func (r *OrderItemRepository) CountActive(ctx context.Context, orderID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int
	err := sqlx.GetContext(ctx, r.ext, &n, `
		SELECT COUNT(*) FROM order_items
		WHERE order_id = $1 AND deleted = FALSE
	`, orderID)
	if err != nil {
		return 0, fmt.Errorf("count relations for order %d: %w", orderID, err)
	}
	return n, nil
}

func (r *OrderItemRepository) ListByOrder(ctx context.Context, orderID int64, includeDeleted bool) ([]domain.OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rels := []domain.OrderItem{}
	err := sqlx.SelectContext(ctx, r.ext, &rels, `
		SELECT order_id, item_id, deleted
		FROM order_items
		WHERE order_id = $1 AND (deleted = FALSE OR $2)
		ORDER BY item_id
	`, orderID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list relations for order %d: %w", orderID, err)
	}
	return rels, nil
}

func (r *OrderItemRepository) ListAll(ctx context.Context, includeDeleted bool) ([]domain.OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rels := []domain.OrderItem{}
	err := sqlx.SelectContext(ctx, r.ext, &rels, `
		SELECT order_id, item_id, deleted
		FROM order_items
		WHERE deleted = FALSE OR $1
		ORDER BY order_id, item_id
	`, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}
	return rels, nil
}

// Transact runs fn against a transaction-scoped copy of the repository. It
// must be called on the pool-backed repository, not a nested one.
func (r *OrderItemRepository) Transact(ctx context.Context, fn func(ports.OrderItemRepository) error) error {
	if r.db == nil {
		return errors.New("nested transaction")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := fn(&OrderItemRepository{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
