package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/api/metrics"
	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
	"github.com/fieldtrack/assettrack/internal/transport"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
)

type itemReadCreateRequest struct {
	TagID    string `json:"tagId" validate:"required"`
	ReadTime string `json:"readTime"`
}

type itemReadUpdateRequest struct {
	ReadID   int64  `json:"readId" validate:"required,gt=0"`
	TagID    string `json:"tagId" validate:"required"`
	ReadTime string `json:"readTime"`
}

type itemReadDeleteRequest struct {
	ReadID int64 `json:"readId" validate:"required,gt=0"`
}

type itemReadListByItemRequest struct {
	ItemID int64  `json:"itemId" validate:"required,gt=0"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type itemReadView struct {
	ReadID   int64  `json:"readId"`
	TagID    string `json:"tagId"`
	ReadTime string `json:"readTime"`
	Deleted  bool   `json:"deleted"`
}

// scanView is the trimmed shape device-facing snapshots use.
type scanView struct {
	TagID    string `json:"tagId"`
	ReadTime string `json:"readTime"`
}

// ItemReadHandler translates ItemRead.* wire messages into scan-log calls.
// BrokerItemRead.Create, the type the device bridge stamps, shares the create
// path so broker scans flow through the same debounce and tag checks.
type ItemReadHandler struct {
	svc ports.ItemReadService
	log zerolog.Logger
}

func NewItemReadHandler(svc ports.ItemReadService, log zerolog.Logger) *ItemReadHandler {
	return &ItemReadHandler{svc: svc, log: log}
}

// Register wires the ItemRead message family into the dispatch table.
func (h *ItemReadHandler) Register(d *dispatch.Dispatcher) {
	d.Handle(transport.ItemReadList, h.List)
	d.Handle(transport.ItemReadCreate, h.Create)
	d.Handle(transport.BrokerItemReadCreate, h.Create)
	d.Handle(transport.ItemReadUpdate, h.Update)
	d.Handle(transport.ItemReadDelete, h.Delete)
	d.Handle(transport.ItemReadListByItem, h.ListByItem)
}

// List answers ItemRead.List with a snapshot of all non-deleted reads.
func (h *ItemReadHandler) List(ctx context.Context, _ transport.Envelope) (string, error) {
	reads, err := h.svc.ListActive(ctx)
	if err != nil {
		return "", err
	}

	views := make([]scanView, 0, len(reads))
	for _, r := range reads {
		views = append(views, scanView{TagID: r.TagID, ReadTime: formatTimestamp(r.ReadTime)})
	}
	return transport.Encode(transport.ItemReadSnapshot, map[string]any{"orders": views})
}

// Create answers ItemRead.Create and BrokerItemRead.Create with an
// ItemRead.Upsert. Debounced scans and scans of unknown tags are dropped
// silently; the scanner gets no feedback either way.
func (h *ItemReadHandler) Create(ctx context.Context, env transport.Envelope) (string, error) {
	var req itemReadCreateRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Str("type", env.Type).Msg("invalid scan payload")
		return "", nil
	}

	read, err := h.svc.RecordScan(ctx, req.TagID, parseTimestamp(req.ReadTime))
	if errors.Is(err, domain.ErrItemNotFound) {
		metrics.ScansSuppressedTotal.WithLabelValues("unknown_tag").Inc()
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if read == nil {
		metrics.ScansSuppressedTotal.WithLabelValues("debounced").Inc()
		return "", nil
	}

	metrics.ScansRecordedTotal.Inc()
	return transport.Encode(transport.ItemReadUpsert, newItemReadView(*read))
}

// Update answers ItemRead.Update with an ItemRead.Upsert.
func (h *ItemReadHandler) Update(ctx context.Context, env transport.Envelope) (string, error) {
	var req itemReadUpdateRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid ItemRead.Update payload")
		return "", nil
	}

	read, err := h.svc.UpdateRead(ctx, req.ReadID, req.TagID, parseTimestamp(req.ReadTime))
	if err != nil {
		h.log.Warn().Err(err).Int64("read_id", req.ReadID).Msg("read update rejected")
		return "", nil
	}
	return transport.Encode(transport.ItemReadUpsert, newItemReadView(*read))
}

// Delete answers ItemRead.Delete with ItemRead.Deleted.
func (h *ItemReadHandler) Delete(ctx context.Context, env transport.Envelope) (string, error) {
	var req itemReadDeleteRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid ItemRead.Delete payload")
		return "", nil
	}

	ok, err := h.svc.DeleteRead(ctx, req.ReadID)
	if err != nil {
		return "", err
	}
	if !ok {
		h.log.Warn().Int64("read_id", req.ReadID).Msg("read delete had no effect")
		return "", nil
	}
	return transport.Encode(transport.ItemReadDeleted, map[string]any{"readId": req.ReadID})
}

// ListByItem answers ItemRead.ListByItem with the item's scan history,
// optionally bounded to a [from, to] window.
func (h *ItemReadHandler) ListByItem(ctx context.Context, env transport.Envelope) (string, error) {
	var req itemReadListByItemRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid ItemRead.ListByItem payload")
		return "", nil
	}

	reads, err := h.svc.ListForItem(ctx, req.ItemID, parseTimestamp(req.From), parseTimestamp(req.To))
	if err != nil {
		h.log.Warn().Err(err).Int64("item_id", req.ItemID).Msg("read history rejected")
		return "", nil
	}

	views := make([]itemReadView, 0, len(reads))
	for _, r := range reads {
		views = append(views, newItemReadView(r))
	}
	return transport.Encode(transport.ItemReadSnapshotForItem, map[string]any{
		"itemId": req.ItemID,
		"reads":  views,
	})
}

func newItemReadView(r domain.ItemRead) itemReadView {
	return itemReadView{
		ReadID:   r.ID,
		TagID:    r.TagID,
		ReadTime: formatTimestamp(r.ReadTime),
		Deleted:  r.Deleted,
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
