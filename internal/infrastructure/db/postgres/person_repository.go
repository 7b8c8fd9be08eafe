package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

// PersonRepository persists people in the persons table.
type PersonRepository struct {
	db *sqlx.DB
}

func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) Create(ctx context.Context, name string, role domain.PersonRole) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO persons (name, role, deleted)
		VALUES ($1, $2, FALSE)
		RETURNING person_id
	`, name, role).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert person: %w", err)
	}
	return id, nil
}

func (r *PersonRepository) ByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Person, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Person
	err := r.db.GetContext(ctx, &p, `
		SELECT person_id, name, role, deleted
		FROM persons
		WHERE person_id = $1 AND (deleted = FALSE OR $2)
	`, id, includeDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPersonNotFound
		}
		return nil, fmt.Errorf("select person %d: %w", id, err)
	}
	return &p, nil
}

func (r *PersonRepository) List(ctx context.Context, includeDeleted bool) ([]domain.Person, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	people := []domain.Person{}
	err := r.db.SelectContext(ctx, &people, `
		SELECT person_id, name, role, deleted
		FROM persons
		WHERE deleted = FALSE OR $1
		ORDER BY person_id
	`, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return people, nil
}

func (r *PersonRepository) Update(ctx context.Context, id int64, name string, role domain.PersonRole) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE persons
		SET name = $2, role = $3
		WHERE person_id = $1 AND deleted = FALSE
	`, id, name, role)
	if err != nil {
		return false, fmt.Errorf("update person %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *PersonRepository) UpdateRole(ctx context.Context, id int64, role domain.PersonRole) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE persons
		SET role = $2
		WHERE person_id = $1 AND deleted = FALSE
	`, id, role)
	if err != nil {
		return false, fmt.Errorf("update person %d role: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *PersonRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE persons
		SET deleted = TRUE
		WHERE person_id = $1 AND deleted = FALSE
	`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete person %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
