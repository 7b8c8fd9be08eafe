package ports

import (
	"context"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

// ItemRepository defines persistence operations for tagged items.
// The tag id is unique across all rows regardless of deleted state.
type ItemRepository interface {
	Create(ctx context.Context, tagID string, position domain.Position, overdue bool) (int64, error)
	ByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Item, error)
	ByTag(ctx context.Context, tagID string, includeDeleted bool) (*domain.Item, error)
	List(ctx context.Context, includeDeleted bool) ([]domain.Item, error)
	// ListByOrder returns the items attached to an order via active relations.
	ListByOrder(ctx context.Context, orderID int64, includeDeleted bool) ([]domain.Item, error)
	UpdatePosition(ctx context.Context, id int64, position domain.Position) (bool, error)
	UpdateOverdue(ctx context.Context, id int64, overdue bool) (bool, error)
	UpdateTag(ctx context.Context, id int64, tagID string) (bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
}

// ItemService covers item lifecycle and position tracking.
type ItemService interface {
	Create(ctx context.Context, tagID string, position domain.Position, overdue bool) (*domain.Item, error)
	Get(ctx context.Context, id int64, includeDeleted bool) (*domain.Item, error)
	GetByTag(ctx context.Context, tagID string, includeDeleted bool) (*domain.Item, error)
	ListActive(ctx context.Context) ([]domain.Item, error)
	ListForOrder(ctx context.Context, orderID int64, includeDeleted bool) ([]domain.Item, error)
	Move(ctx context.Context, id int64, position domain.Position) (bool, error)
	MarkOverdue(ctx context.Context, id int64, overdue bool) (bool, error)
	ChangeTag(ctx context.Context, id int64, tagID string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
