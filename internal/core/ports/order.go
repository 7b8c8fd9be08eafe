package ports

import (
	"context"
	"time"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

// OrderRepository defines persistence operations for orders. Reads exclude
// soft-deleted rows unless includeDeleted is set.
type OrderRepository interface {
	// Create inserts a new order and returns its id. The created date is
	// immutable after this call.
	Create(ctx context.Context, createdDate time.Time, customerID, loggedByID *int64) (int64, error)
	ByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Order, error)
	List(ctx context.Context, includeDeleted bool) ([]domain.Order, error)
	// UpdateDates sets the start and end dates. Nil clears a date.
	UpdateDates(ctx context.Context, id int64, start, end *time.Time) (bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
}

// OrderService covers the order lifecycle.
type OrderService interface {
	Create(ctx context.Context, createdDate *time.Time, customerID, loggedByID *int64) (*domain.Order, error)
	Get(ctx context.Context, id int64, includeDeleted bool) (*domain.Order, error)
	ListActive(ctx context.Context) ([]domain.Order, error)
	// UpdateDates rejects the write when both dates are set and end < start.
	UpdateDates(ctx context.Context, id int64, start, end *time.Time) (bool, error)
	Start(ctx context.Context, id int64, when *time.Time) (bool, error)
	Close(ctx context.Context, id int64, when *time.Time) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
