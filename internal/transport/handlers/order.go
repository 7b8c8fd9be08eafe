package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
	"github.com/fieldtrack/assettrack/internal/transport"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
)

type orderUpsertRequest struct {
	OrderID     int64  `json:"orderId"`
	CreatedDate string `json:"createdDate"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	CustomerID  *int64 `json:"customerId"`
	LoggedByID  *int64 `json:"loggedById"`
}

type orderDeleteRequest struct {
	OrderID int64 `json:"orderId" validate:"required,gt=0"`
}

type orderView struct {
	OrderID     int64  `json:"orderId"`
	CreatedDate string `json:"createdDate,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	CustomerID  *int64 `json:"customerId,omitempty"`
	LoggedByID  *int64 `json:"loggedById,omitempty"`
	Deleted     bool   `json:"deleted"`
}

// OrderHandler translates Order.* wire messages into OrderService calls.
type OrderHandler struct {
	svc ports.OrderService
	log zerolog.Logger
}

func NewOrderHandler(svc ports.OrderService, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// Register wires the Order message family into the dispatch table.
func (h *OrderHandler) Register(d *dispatch.Dispatcher) {
	d.Handle(transport.OrderList, h.List)
	d.Handle(transport.OrderCreate, h.Upsert)
	d.Handle(transport.OrderUpdate, h.Upsert)
	d.Handle(transport.OrderDelete, h.Delete)
}

// List answers Order.List with an Order.Snapshot of all non-deleted orders.
func (h *OrderHandler) List(ctx context.Context, _ transport.Envelope) (string, error) {
	orders, err := h.svc.ListActive(ctx)
	if err != nil {
		return "", err
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o))
	}
	return transport.Encode(transport.OrderSnapshot, map[string]any{"orders": views})
}

// Upsert answers Order.Create and Order.Update with an Order.Upsert. On
// update, a client-supplied createdDate is ignored: the stored creation date
// is immutable.
func (h *OrderHandler) Upsert(ctx context.Context, env transport.Envelope) (string, error) {
	var req orderUpsertRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Str("type", env.Type).Msg("invalid order payload")
		return "", nil
	}

	start := parseDate(req.StartDate)
	end := parseDate(req.EndDate)

	var result *domain.Order

	switch env.Type {
	case transport.OrderCreate:
		order, err := h.svc.Create(ctx, parseDate(req.CreatedDate), req.CustomerID, req.LoggedByID)
		if err != nil {
			h.log.Warn().Err(err).Msg("order create rejected")
			return "", nil
		}
		if start != nil || end != nil {
			if _, err := h.svc.UpdateDates(ctx, order.ID, start, end); err != nil {
				h.log.Warn().Err(err).Int64("order_id", order.ID).Msg("dates rejected for new order")
			}
			order, err = h.svc.Get(ctx, order.ID, true)
			if err != nil {
				return "", err
			}
		}
		result = order

	default:
		if req.OrderID <= 0 {
			h.log.Warn().Msg("missing orderId in Order.Update payload")
			return "", nil
		}
		if _, err := h.svc.UpdateDates(ctx, req.OrderID, start, end); err != nil {
			h.log.Warn().Err(err).Int64("order_id", req.OrderID).Msg("order update rejected")
			return "", nil
		}
		order, err := h.svc.Get(ctx, req.OrderID, true)
		if err != nil {
			h.log.Warn().Err(err).Int64("order_id", req.OrderID).Msg("order not found after update")
			return "", nil
		}
		result = order
	}

	return transport.Encode(transport.OrderUpsert, map[string]any{"order": newOrderView(*result)})
}

// Delete answers Order.Delete with an Order.Upsert carrying deleted=true; the
// deployed desktop client folds deletions into its upsert path for orders.
func (h *OrderHandler) Delete(ctx context.Context, env transport.Envelope) (string, error) {
	var req orderDeleteRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid Order.Delete payload")
		return "", nil
	}

	ok, err := h.svc.Delete(ctx, req.OrderID)
	if err != nil {
		return "", err
	}
	if !ok {
		h.log.Warn().Int64("order_id", req.OrderID).Msg("order delete had no effect")
		return "", nil
	}

	order, err := h.svc.Get(ctx, req.OrderID, true)
	if err != nil {
		return "", err
	}
	return transport.Encode(transport.OrderUpsert, map[string]any{"order": newOrderView(*order)})
}

func newOrderView(o domain.Order) orderView {
	created := o.CreatedDate
	return orderView{
		OrderID:     o.ID,
		CreatedDate: formatDate(&created),
		StartDate:   formatDate(o.StartDate),
		EndDate:     formatDate(o.EndDate),
		CustomerID:  o.CustomerID,
		LoggedByID:  o.LoggedByID,
		Deleted:     o.Deleted,
	}
}
