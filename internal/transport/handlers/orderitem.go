package handlers

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
	"github.com/fieldtrack/assettrack/internal/transport"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
)

type orderItemRequest struct {
	OrderID int64 `json:"orderId" validate:"required,gt=0"`
	ItemID  int64 `json:"itemId" validate:"required,gt=0"`
}

type orderItemMoveRequest struct {
	ItemID      int64 `json:"itemId" validate:"required,gt=0"`
	FromOrderID int64 `json:"fromOrderId" validate:"required,gt=0"`
	ToOrderID   int64 `json:"toOrderId" validate:"required,gt=0"`
}

type orderScopedRequest struct {
	OrderID int64 `json:"orderId" validate:"required,gt=0"`
}

type orderItemView struct {
	OrderID int64 `json:"orderId"`
	ItemID  int64 `json:"itemId"`
	Deleted bool  `json:"deleted"`
}

type attachedItemView struct {
	OrderID int64    `json:"orderId"`
	ItemID  int64    `json:"itemId"`
	Deleted bool     `json:"deleted"`
	Item    itemView `json:"item"`
}

// OrderItemHandler translates OrderItem.* wire messages into relation calls.
// It also holds the item service so order-scoped snapshots can embed the
// items themselves, not just their ids.
type OrderItemHandler struct {
	svc   ports.OrderItemService
	items ports.ItemService
	log   zerolog.Logger
}

func NewOrderItemHandler(svc ports.OrderItemService, items ports.ItemService, log zerolog.Logger) *OrderItemHandler {
	return &OrderItemHandler{svc: svc, items: items, log: log}
}

// Register wires the OrderItem message family into the dispatch table.
func (h *OrderItemHandler) Register(d *dispatch.Dispatcher) {
	d.Handle(transport.OrderItemList, h.List)
	d.Handle(transport.OrderItemCreate, h.Attach)
	d.Handle(transport.OrderItemUpdate, h.Attach)
	d.Handle(transport.OrderItemMove, h.Move)
	d.Handle(transport.OrderItemDelete, h.Detach)
	d.Handle(transport.OrderItemListByOrder, h.ListByOrder)
	d.Handle(transport.OrderItemPositionCounts, h.PositionCounts)
}

// List answers OrderItem.List with a snapshot of all active relations.
func (h *OrderItemHandler) List(ctx context.Context, _ transport.Envelope) (string, error) {
	rels, err := h.svc.ListAll(ctx, false)
	if err != nil {
		return "", err
	}

	views := make([]orderItemView, 0, len(rels))
	for _, rel := range rels {
		views = append(views, newOrderItemView(rel))
	}
	return transport.Encode(transport.OrderItemSnapshot, map[string]any{"orders": views})
}

// Attach answers OrderItem.Create and OrderItem.Update with an
// OrderItem.Upsert. Deployed clients send both types for the same
// attach-or-revive operation, so they share one path. Attaching an item that
// is already on another order is refused.
func (h *OrderItemHandler) Attach(ctx context.Context, env transport.Envelope) (string, error) {
	var req orderItemRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Str("type", env.Type).Msg("invalid order item payload")
		return "", nil
	}

	rel, err := h.svc.Attach(ctx, req.ItemID, req.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrItemAttached) {
			h.log.Warn().Int64("item_id", req.ItemID).Int64("order_id", req.OrderID).
				Msg("item already attached elsewhere")
			return "", nil
		}
		return "", err
	}
	return transport.Encode(transport.OrderItemUpsert, newOrderItemView(*rel))
}

// Move answers OrderItem.Move by reattaching the item from one order to
// another in a single transaction, replying with the new relation.
func (h *OrderItemHandler) Move(ctx context.Context, env transport.Envelope) (string, error) {
	var req orderItemMoveRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid OrderItem.Move payload")
		return "", nil
	}

	if err := h.svc.Move(ctx, req.ItemID, req.FromOrderID, req.ToOrderID); err != nil {
		h.log.Warn().Err(err).Int64("item_id", req.ItemID).
			Int64("from", req.FromOrderID).Int64("to", req.ToOrderID).
			Msg("order item move rejected")
		return "", nil
	}
	return transport.Encode(transport.OrderItemUpsert, orderItemView{
		OrderID: req.ToOrderID,
		ItemID:  req.ItemID,
	})
}

// Detach answers OrderItem.Delete with OrderItem.Deleted. Detaching a
// relation that is not active is a no-op with no reply.
func (h *OrderItemHandler) Detach(ctx context.Context, env transport.Envelope) (string, error) {
	var req orderItemRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid OrderItem.Delete payload")
		return "", nil
	}

	ok, err := h.svc.Detach(ctx, req.ItemID, req.OrderID)
	if err != nil {
		return "", err
	}
	if !ok {
		h.log.Warn().Int64("item_id", req.ItemID).Int64("order_id", req.OrderID).
			Msg("order item detach had no effect")
		return "", nil
	}
	return transport.Encode(transport.OrderItemDeleted, map[string]any{
		"orderId": req.OrderID,
		"itemId":  req.ItemID,
	})
}

// ListByOrder answers OrderItem.ListByOrder with the order's relations, each
// carrying its item inline.
func (h *OrderItemHandler) ListByOrder(ctx context.Context, env transport.Envelope) (string, error) {
	var req orderScopedRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid OrderItem.ListByOrder payload")
		return "", nil
	}

	rels, err := h.svc.ItemsInOrder(ctx, req.OrderID, false)
	if err != nil {
		return "", err
	}

	views := make([]attachedItemView, 0, len(rels))
	for _, rel := range rels {
		item, err := h.items.Get(ctx, rel.ItemID, true)
		if err != nil {
			if errors.Is(err, domain.ErrItemNotFound) {
				h.log.Warn().Int64("item_id", rel.ItemID).Msg("relation references missing item")
				continue
			}
			return "", err
		}
		views = append(views, attachedItemView{
			OrderID: rel.OrderID,
			ItemID:  rel.ItemID,
			Deleted: rel.Deleted,
			Item:    newItemView(*item),
		})
	}
	return transport.Encode(transport.OrderItemSnapshotForOrder, map[string]any{
		"orderId": req.OrderID,
		"items":   views,
	})
}

// PositionCounts answers OrderItem.PositionCounts with the number of the
// order's items in each position. Every position appears in the reply, zero
// or not.
func (h *OrderItemHandler) PositionCounts(ctx context.Context, env transport.Envelope) (string, error) {
	var req orderScopedRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid OrderItem.PositionCounts payload")
		return "", nil
	}

	items, err := h.items.ListForOrder(ctx, req.OrderID, false)
	if err != nil {
		return "", err
	}

	counts := make(map[string]int, len(domain.Positions()))
	for _, pos := range domain.Positions() {
		counts[string(pos)] = 0
	}
	for _, it := range items {
		counts[string(it.Position)]++
	}
	return transport.Encode(transport.OrderItemPositionCounts, map[string]any{
		"orderId": req.OrderID,
		"counts":  counts,
	})
}

func newOrderItemView(rel domain.OrderItem) orderItemView {
	return orderItemView{OrderID: rel.OrderID, ItemID: rel.ItemID, Deleted: rel.Deleted}
}
