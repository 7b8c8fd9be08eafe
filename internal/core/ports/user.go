package ports

import (
	"context"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

// UserRepository defines persistence for login accounts. AppUser is the one
// entity with hard deletion (administrative removal).
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash, salt string, role domain.UserRole) (int64, error)
	ByID(ctx context.Context, id int64) (*domain.AppUser, error)
	ByUsername(ctx context.Context, username string) (*domain.AppUser, error)
	List(ctx context.Context) ([]domain.AppUser, error)
	UpdateUsername(ctx context.Context, id int64, username string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash, salt string) (bool, error)
	UpdateRole(ctx context.Context, id int64, role domain.UserRole) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserService covers account registration and credential checks.
type UserService interface {
	Register(ctx context.Context, username, password string, role domain.UserRole) (*domain.AppUser, error)
	// Login verifies credentials and returns the account on success.
	Login(ctx context.Context, username, password string) (*domain.AppUser, error)
	GetByUsername(ctx context.Context, username string) (*domain.AppUser, error)
	Get(ctx context.Context, id int64) (*domain.AppUser, error)
	List(ctx context.Context) ([]domain.AppUser, error)
	UpdateUsername(ctx context.Context, id int64, username string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, password string) (bool, error)
	UpdateRole(ctx context.Context, id int64, role domain.UserRole) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
