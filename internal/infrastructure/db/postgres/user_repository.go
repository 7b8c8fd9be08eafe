package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

// UserRepository persists login accounts in the app_users table. Unlike the
// other repositories, Delete removes the row; retired accounts carry no
// history worth keeping.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, username, passwordHash, salt string, role domain.UserRole) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO app_users (username, password_hash, salt, role, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING user_id
	`, username, passwordHash, salt, role).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrUserExists
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (r *UserRepository) ByID(ctx context.Context, id int64) (*domain.AppUser, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.AppUser
	err := r.db.GetContext(ctx, &u, `
		SELECT user_id, username, password_hash, salt, role, created_at
		FROM app_users
		WHERE user_id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return &u, nil
}

func (r *UserRepository) ByUsername(ctx context.Context, username string) (*domain.AppUser, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.AppUser
	err := r.db.GetContext(ctx, &u, `
		SELECT user_id, username, password_hash, salt, role, created_at
		FROM app_users
		WHERE username = $1
	`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.AppUser, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	users := []domain.AppUser{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT user_id, username, password_hash, salt, role, created_at
		FROM app_users
		ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) UpdateUsername(ctx context.Context, id int64, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE app_users SET username = $2 WHERE user_id = $1
	`, id, username)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrUserExists
		}
		return false, fmt.Errorf("update user %d username: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash, salt string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE app_users SET password_hash = $2, salt = $3 WHERE user_id = $1
	`, id, passwordHash, salt)
	if err != nil {
		return false, fmt.Errorf("update user %d password: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role domain.UserRole) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE app_users SET role = $2 WHERE user_id = $1
	`, id, role)
	if err != nil {
		return false, fmt.Errorf("update user %d role: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM app_users WHERE user_id = $1
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
