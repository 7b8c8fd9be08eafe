package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
	"github.com/fieldtrack/assettrack/internal/transport"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
)

type itemCreateRequest struct {
	TagID     string `json:"tagId" validate:"required"`
	Position  string `json:"position"`
	IsOverdue bool   `json:"isOverdue"`
}

type itemUpdateRequest struct {
	ItemID    int64  `json:"itemId" validate:"required,gt=0"`
	Position  string `json:"position" validate:"required"`
	IsOverdue bool   `json:"isOverdue"`
}

type itemDeleteRequest struct {
	ItemID int64 `json:"itemId" validate:"required,gt=0"`
}

type itemView struct {
	ItemID    int64  `json:"itemId"`
	TagID     string `json:"tagId"`
	Position  string `json:"position"`
	IsOverdue bool   `json:"isOverdue"`
}

// ItemHandler translates Item.* wire messages into ItemService calls.
type ItemHandler struct {
	svc ports.ItemService
	log zerolog.Logger
}

func NewItemHandler(svc ports.ItemService, log zerolog.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, log: log}
}

// Register wires the Item message family into the dispatch table.
func (h *ItemHandler) Register(d *dispatch.Dispatcher) {
	d.Handle(transport.ItemList, h.List)
	d.Handle(transport.ItemCreate, h.Upsert)
	d.Handle(transport.ItemUpdate, h.Upsert)
	d.Handle(transport.ItemDelete, h.Delete)
}

// List answers Item.List with an Item.Snapshot of all non-deleted items.
func (h *ItemHandler) List(ctx context.Context, _ transport.Envelope) (string, error) {
	items, err := h.svc.ListActive(ctx)
	if err != nil {
		return "", err
	}

	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, newItemView(it))
	}
	// legacy clients expect the array under "orders" for every snapshot
	return transport.Encode(transport.ItemSnapshot, map[string]any{"orders": views})
}

// Upsert answers Item.Create and Item.Update with an Item.Upsert. Create
// ignores any client-supplied id; Update never changes the id.
func (h *ItemHandler) Upsert(ctx context.Context, env transport.Envelope) (string, error) {
	var result *domain.Item

	switch env.Type {
	case transport.ItemCreate:
		var req itemCreateRequest
		if err := bind(env, &req); err != nil {
			h.log.Warn().Err(err).Msg("invalid Item.Create payload")
			return "", nil
		}
		item, err := h.svc.Create(ctx, req.TagID, domain.ParsePosition(req.Position), req.IsOverdue)
		if err != nil {
			h.log.Warn().Err(err).Str("tag_id", req.TagID).Msg("item create rejected")
			return "", nil
		}
		result = item

	default:
		var req itemUpdateRequest
		if err := bind(env, &req); err != nil {
			h.log.Warn().Err(err).Msg("invalid Item.Update payload")
			return "", nil
		}
		moved, err := h.svc.Move(ctx, req.ItemID, domain.ParsePosition(req.Position))
		if err != nil {
			return "", err
		}
		marked, err := h.svc.MarkOverdue(ctx, req.ItemID, req.IsOverdue)
		if err != nil {
			return "", err
		}
		if !moved && !marked {
			h.log.Warn().Int64("item_id", req.ItemID).Msg("item update had no effect")
			return "", nil
		}
		item, err := h.svc.Get(ctx, req.ItemID, true)
		if err != nil {
			return "", err
		}
		result = item
	}

	return transport.Encode(transport.ItemUpsert, newItemView(*result))
}

// Delete answers Item.Delete with Item.Deleted.
func (h *ItemHandler) Delete(ctx context.Context, env transport.Envelope) (string, error) {
	var req itemDeleteRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid Item.Delete payload")
		return "", nil
	}

	ok, err := h.svc.Delete(ctx, req.ItemID)
	if err != nil {
		return "", err
	}
	if !ok {
		h.log.Warn().Int64("item_id", req.ItemID).Msg("item delete had no effect")
		return "", nil
	}
	return transport.Encode(transport.ItemDeleted, map[string]any{"itemId": req.ItemID})
}

func newItemView(it domain.Item) itemView {
	return itemView{
		ItemID:    it.ID,
		TagID:     it.TagID,
		Position:  string(it.Position),
		IsOverdue: it.IsOverdue,
	}
}
