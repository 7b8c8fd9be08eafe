package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
)

type orderItemService struct {
	orders ports.OrderRepository
	items  ports.ItemRepository
	rels   ports.OrderItemRepository
	log    zerolog.Logger
}

// NewOrderItemService returns an OrderItemService implementation.
func NewOrderItemService(
	orders ports.OrderRepository,
	items ports.ItemRepository,
	rels ports.OrderItemRepository,
	log zerolog.Logger,
) ports.OrderItemService {
	return &orderItemService{orders: orders, items: items, rels: rels, log: log}
}

// Attach links the item to the order. Both parents must exist (deleted rows
// count as existing, matching the composite-key semantics), and the item must
// not be held by any other active relation.
func (s *orderItemService) Attach(ctx context.Context, itemID, orderID int64) (*domain.OrderItem, error) {
	if _, err := s.orders.ByID(ctx, orderID, true); err != nil {
		return nil, fmt.Errorf("attach item %d to order %d: %w", itemID, orderID, err)
	}
	if _, err := s.items.ByID(ctx, itemID, true); err != nil {
		return nil, fmt.Errorf("attach item %d to order %d: %w", itemID, orderID, err)
	}

	rel, err := s.rels.Attach(ctx, orderID, itemID)
	if err != nil {
		return nil, fmt.Errorf("attach item %d to order %d: %w", itemID, orderID, err)
	}

	s.log.Info().Int64("order_id", orderID).Int64("item_id", itemID).Msg("item attached")
	return rel, nil
}

// Detach soft-deletes the active relation. Idempotent: returns false and
// writes nothing when no active relation exists.
func (s *orderItemService) Detach(ctx context.Context, itemID, orderID int64) (bool, error) {
	ok, err := s.rels.Detach(ctx, orderID, itemID)
	if err != nil {
		return false, fmt.Errorf("detach item %d from order %d: %w", itemID, orderID, err)
	}
	if ok {
		s.log.Info().Int64("order_id", orderID).Int64("item_id", itemID).Msg("item detached")
	}
	return ok, nil
}

// Move reattaches the item from one order to another. Detach and attach run
// inside one transaction, so a failed attach leaves the original relation in
// place.
func (s *orderItemService) Move(ctx context.Context, itemID, fromOrderID, toOrderID int64) error {
	if fromOrderID == toOrderID {
		return nil
	}
	if _, err := s.orders.ByID(ctx, toOrderID, true); err != nil {
		return fmt.Errorf("move item %d to order %d: %w", itemID, toOrderID, err)
	}

	err := s.rels.Transact(ctx, func(tx ports.OrderItemRepository) error {
		if _, err := tx.Detach(ctx, fromOrderID, itemID); err != nil {
			return err
		}
		_, err := tx.Attach(ctx, toOrderID, itemID)
		return err
	})
	if err != nil {
		return fmt.Errorf("move item %d from order %d to %d: %w", itemID, fromOrderID, toOrderID, err)
	}

	s.log.Info().
		Int64("item_id", itemID).
		Int64("from_order", fromOrderID).
		Int64("to_order", toOrderID).
		Msg("item moved")
	return nil
}

func (s *orderItemService) ItemsInOrder(ctx context.Context, orderID int64, includeDeleted bool) ([]domain.OrderItem, error) {
	return s.rels.ListByOrder(ctx, orderID, includeDeleted)
}

func (s *orderItemService) ListAll(ctx context.Context, includeDeleted bool) ([]domain.OrderItem, error) {
	return s.rels.ListAll(ctx, includeDeleted)
}

func (s *orderItemService) IsAttached(ctx context.Context, orderID, itemID int64) (bool, error) {
	return s.rels.IsAttached(ctx, orderID, itemID, false)
}

func (s *orderItemService) CountActive(ctx context.Context, orderID int64) (int, error) {
	return s.rels.CountActive(ctx, orderID)
}
