package ports

import (
	"context"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

// PersonRepository defines persistence operations for people.
type PersonRepository interface {
	Create(ctx context.Context, name string, role domain.PersonRole) (int64, error)
	ByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Person, error)
	List(ctx context.Context, includeDeleted bool) ([]domain.Person, error)
	Update(ctx context.Context, id int64, name string, role domain.PersonRole) (bool, error)
	UpdateRole(ctx context.Context, id int64, role domain.PersonRole) (bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
}

// PersonService covers person management.
type PersonService interface {
	Create(ctx context.Context, name string, role domain.PersonRole) (*domain.Person, error)
	Get(ctx context.Context, id int64, includeDeleted bool) (*domain.Person, error)
	ListActive(ctx context.Context) ([]domain.Person, error)
	Update(ctx context.Context, id int64, name string, role domain.PersonRole) (*domain.Person, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
