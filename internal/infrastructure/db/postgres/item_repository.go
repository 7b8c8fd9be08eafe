package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

// ItemRepository persists tagged items. The tag_id column carries a unique
// constraint spanning deleted rows too, so a retired tag cannot be reissued.
type ItemRepository struct {
	db *sqlx.DB
}

func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, tagID string, position domain.Position, overdue bool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO items (tag_id, position, is_overdue, deleted)
		VALUES ($1, $2, $3, FALSE)
		RETURNING item_id
	`, tagID, position, overdue).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateTag
		}
		return 0, fmt.Errorf("insert item: %w", err)
	}
	return id, nil
}

func (r *ItemRepository) ByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var it domain.Item
	err := r.db.GetContext(ctx, &it, `
		SELECT item_id, tag_id, position, is_overdue, deleted
		FROM items
		WHERE item_id = $1 AND (deleted = FALSE OR $2)
	`, id, includeDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("select item %d: %w", id, err)
	}
	return &it, nil
}

func (r *ItemRepository) ByTag(ctx context.Context, tagID string, includeDeleted bool) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var it domain.Item
	err := r.db.GetContext(ctx, &it, `
		SELECT item_id, tag_id, position, is_overdue, deleted
		FROM items
		WHERE tag_id = $1 AND (deleted = FALSE OR $2)
	`, tagID, includeDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("select item by tag %q: %w", tagID, err)
	}
	return &it, nil
}

func (r *ItemRepository) List(ctx context.Context, includeDeleted bool) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items := []domain.Item{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT item_id, tag_id, position, is_overdue, deleted
		FROM items
		WHERE deleted = FALSE OR $1
		ORDER BY item_id
	`, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// ListByOrder returns the items joined through active order_items relations.
func (r *ItemRepository) ListByOrder(ctx context.Context, orderID int64, includeDeleted bool) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items := []domain.Item{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT i.item_id, i.tag_id, i.position, i.is_overdue, i.deleted
		FROM items i
		JOIN order_items oi ON oi.item_id = i.item_id AND oi.deleted = FALSE
		WHERE oi.order_id = $1 AND (i.deleted = FALSE OR $2)
		ORDER BY i.item_id
	`, orderID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list items for order %d: %w", orderID, err)
	}
	return items, nil
}

func (r *ItemRepository) UpdatePosition(ctx context.Context, id int64, position domain.Position) (bool, error) {
	return r.update(ctx, id, `UPDATE items SET position = $2 WHERE item_id = $1 AND deleted = FALSE AND position <> $2`, position)
}

func (r *ItemRepository) UpdateOverdue(ctx context.Context, id int64, overdue bool) (bool, error) {
	return r.update(ctx, id, `UPDATE items SET is_overdue = $2 WHERE item_id = $1 AND deleted = FALSE AND is_overdue <> $2`, overdue)
}

func (r *ItemRepository) UpdateTag(ctx context.Context, id int64, tagID string) (bool, error) {
	ok, err := r.update(ctx, id, `UPDATE items SET tag_id = $2 WHERE item_id = $1 AND deleted = FALSE`, tagID)
	if err != nil && isUniqueViolation(err) {
		return false, domain.ErrDuplicateTag
	}
	return ok, err
}

func (r *ItemRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE items
		SET deleted = TRUE
		WHERE item_id = $1 AND deleted = FALSE
	`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete item %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ItemRepository) update(ctx context.Context, id int64, query string, arg any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, id, arg)
	if err != nil {
		return false, fmt.Errorf("update item %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
