package ports

import (
	"context"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

// OrderItemRepository defines persistence for order↔item relations.
//
// Attach enforces the exclusivity invariant: it fails with
// domain.ErrItemAttached when any active relation already references the item,
// revives a soft-deleted relation for the same (order, item) pair, and inserts
// a fresh active row otherwise.
type OrderItemRepository interface {
	Attach(ctx context.Context, orderID, itemID int64) (*domain.OrderItem, error)
	// Detach soft-deletes the active relation. Returns false when none is active.
	Detach(ctx context.Context, orderID, itemID int64) (bool, error)
	IsAttached(ctx context.Context, orderID, itemID int64, includeDeleted bool) (bool, error)
	CountActive(ctx context.Context, orderID int64) (int, error)
	ListByOrder(ctx context.Context, orderID int64, includeDeleted bool) ([]domain.OrderItem, error)
	ListAll(ctx context.Context, includeDeleted bool) ([]domain.OrderItem, error)
	// Transact runs fn against a transaction-scoped view of the repository.
	// fn returning an error rolls everything back.
	Transact(ctx context.Context, fn func(OrderItemRepository) error) error
}

// OrderItemService enforces the attach/detach invariants on top of the store.
type OrderItemService interface {
	Attach(ctx context.Context, itemID, orderID int64) (*domain.OrderItem, error)
	Detach(ctx context.Context, itemID, orderID int64) (bool, error)
	// Move reattaches an item from one order to another atomically; on attach
	// failure the item stays attached to its original order.
	Move(ctx context.Context, itemID, fromOrderID, toOrderID int64) error
	ItemsInOrder(ctx context.Context, orderID int64, includeDeleted bool) ([]domain.OrderItem, error)
	ListAll(ctx context.Context, includeDeleted bool) ([]domain.OrderItem, error)
	IsAttached(ctx context.Context, orderID, itemID int64) (bool, error)
	CountActive(ctx context.Context, orderID int64) (int, error)
}
