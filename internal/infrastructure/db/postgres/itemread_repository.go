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

// ItemReadRepository persists the scan log in the item_reads table.
type ItemReadRepository struct {
	db *sqlx.DB
}

func NewItemReadRepository(db *sqlx.DB) *ItemReadRepository {
	return &ItemReadRepository{db: db}
}

func (r *ItemReadRepository) Create(ctx context.Context, tagID string, readTime time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO item_reads (tag_id, read_time, deleted)
		VALUES ($1, $2, FALSE)
		RETURNING read_id
	`, tagID, readTime).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert read: %w", err)
	}
	return id, nil
}

func (r *ItemReadRepository) ByID(ctx context.Context, id int64, includeDeleted bool) (*domain.ItemRead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var read domain.ItemRead
	err := r.db.GetContext(ctx, &read, `
		SELECT read_id, tag_id, read_time, deleted
		FROM item_reads
		WHERE read_id = $1 AND (deleted = FALSE OR $2)
	`, id, includeDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReadNotFound
		}
		return nil, fmt.Errorf("select read %d: %w", id, err)
	}
	return &read, nil
}

func (r *ItemReadRepository) List(ctx context.Context, includeDeleted bool) ([]domain.ItemRead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	reads := []domain.ItemRead{}
	err := r.db.SelectContext(ctx, &reads, `
		SELECT read_id, tag_id, read_time, deleted
		FROM item_reads
		WHERE deleted = FALSE OR $1
		ORDER BY read_time, read_id
	`, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list reads: %w", err)
	}
	return reads, nil
}

// ListForTag returns non-deleted reads of a tag with read_time in [from, to].
func (r *ItemReadRepository) ListForTag(ctx context.Context, tagID string, from, to time.Time) ([]domain.ItemRead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	reads := []domain.ItemRead{}
	err := r.db.SelectContext(ctx, &reads, `
		SELECT read_id, tag_id, read_time, deleted
		FROM item_reads
		WHERE tag_id = $1 AND deleted = FALSE AND read_time BETWEEN $2 AND $3
		ORDER BY read_time, read_id
	`, tagID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list reads for tag %q: %w", tagID, err)
	}
	return reads, nil
}

func (r *ItemReadRepository) Update(ctx context.Context, id int64, tagID string, readTime time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE item_reads
		SET tag_id = $2, read_time = $3
		WHERE read_id = $1 AND deleted = FALSE
	`, id, tagID, readTime)
	if err != nil {
		return false, fmt.Errorf("update read %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ItemReadRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE item_reads
		SET deleted = TRUE
		WHERE read_id = $1 AND deleted = FALSE
	`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete read %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
