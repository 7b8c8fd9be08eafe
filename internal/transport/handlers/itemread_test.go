package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/transport"
)

// ---------------------------------------------------------------------------
// Stub
// ---------------------------------------------------------------------------

type stubItemReadService struct {
	knownTags map[string]bool
	debounce  bool
	reads     []domain.ItemRead
	nextID    int64
}

func newStubItemReadService(tags ...string) *stubItemReadService {
	known := make(map[string]bool, len(tags))
	for _, tag := range tags {
		known[tag] = true
	}
	return &stubItemReadService{knownTags: known}
}

func (s *stubItemReadService) RecordScan(_ context.Context, tagID string, at time.Time) (*domain.ItemRead, error) {
	if !s.knownTags[tagID] {
		return nil, domain.ErrItemNotFound
	}
	if s.debounce {
		return nil, nil
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	s.nextID++
	read := domain.ItemRead{ID: s.nextID, TagID: tagID, ReadTime: at}
	s.reads = append(s.reads, read)
	return &read, nil
}

func (s *stubItemReadService) UpdateRead(_ context.Context, id int64, tagID string, at time.Time) (*domain.ItemRead, error) {
	for i := range s.reads {
		if s.reads[i].ID == id {
			s.reads[i].TagID = tagID
			s.reads[i].ReadTime = at
			read := s.reads[i]
			return &read, nil
		}
	}
	return nil, domain.ErrReadNotFound
}

func (s *stubItemReadService) DeleteRead(_ context.Context, id int64) (bool, error) {
	for i := range s.reads {
		if s.reads[i].ID == id && !s.reads[i].Deleted {
			s.reads[i].Deleted = true
			return true, nil
		}
	}
	return false, nil
}

func (s *stubItemReadService) ListActive(context.Context) ([]domain.ItemRead, error) {
	var out []domain.ItemRead
	for _, r := range s.reads {
		if !r.Deleted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubItemReadService) ListForItem(context.Context, int64, time.Time, time.Time) ([]domain.ItemRead, error) {
	return s.ListActive(context.Background())
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestItemReadHandler_Create_RecordsKnownTag(t *testing.T) {
	svc := newStubItemReadService("TAG-1")
	h := NewItemReadHandler(svc, zerolog.Nop())

	out, err := h.Create(context.Background(), envelope(t, transport.ItemReadCreate,
		`{"tagId":"TAG-1","readTime":"2026-03-01T09:30:00Z"}`))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var view struct {
		ReadID   int64  `json:"readId"`
		TagID    string `json:"tagId"`
		ReadTime string `json:"readTime"`
	}
	decodeReply(t, out, transport.ItemReadUpsert, &view)
	if view.ReadID != 1 || view.TagID != "TAG-1" || view.ReadTime != "2026-03-01T09:30:00Z" {
		t.Errorf("unexpected reply: %+v", view)
	}
}

func TestItemReadHandler_Create_UnknownTagIsSilent(t *testing.T) {
	svc := newStubItemReadService()
	h := NewItemReadHandler(svc, zerolog.Nop())

	out, err := h.Create(context.Background(), envelope(t, transport.ItemReadCreate,
		`{"tagId":"GHOST"}`))
	if err != nil || out != "" {
		t.Errorf("expected silence for unknown tag, got out=%q err=%v", out, err)
	}
	if len(svc.reads) != 0 {
		t.Errorf("nothing should have been recorded, got %d reads", len(svc.reads))
	}
}

func TestItemReadHandler_Create_DebouncedIsSilent(t *testing.T) {
	svc := newStubItemReadService("TAG-1")
	svc.debounce = true
	h := NewItemReadHandler(svc, zerolog.Nop())

	out, err := h.Create(context.Background(), envelope(t, transport.ItemReadCreate,
		`{"tagId":"TAG-1"}`))
	if err != nil || out != "" {
		t.Errorf("expected silence for debounced scan, got out=%q err=%v", out, err)
	}
}

func TestItemReadHandler_BrokerCreate_SharesCreatePath(t *testing.T) {
	svc := newStubItemReadService("TAG-1")
	h := NewItemReadHandler(svc, zerolog.Nop())

	out, err := h.Create(context.Background(), envelope(t, transport.BrokerItemReadCreate,
		`{"tagId":"TAG-1","readTime":"2026-03-01T09:30:00Z"}`))
	if err != nil {
		t.Fatalf("broker create failed: %v", err)
	}

	// the reply routes as a plain ItemRead.Upsert, not a broker type
	var view struct {
		TagID string `json:"tagId"`
	}
	decodeReply(t, out, transport.ItemReadUpsert, &view)
	if view.TagID != "TAG-1" {
		t.Errorf("unexpected reply: %+v", view)
	}
}

func TestItemReadHandler_DeleteLifecycle(t *testing.T) {
	svc := newStubItemReadService("TAG-1")
	h := NewItemReadHandler(svc, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.RecordScan(ctx, "TAG-1", time.Now()); err != nil {
		t.Fatalf("seed scan: %v", err)
	}

	out, err := h.Delete(ctx, envelope(t, transport.ItemReadDelete, `{"readId":1}`))
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	var reply struct {
		ReadID int64 `json:"readId"`
	}
	decodeReply(t, out, transport.ItemReadDeleted, &reply)
	if reply.ReadID != 1 {
		t.Errorf("unexpected reply: %+v", reply)
	}

	out, err = h.Delete(ctx, envelope(t, transport.ItemReadDelete, `{"readId":1}`))
	if err != nil || out != "" {
		t.Errorf("expected silence on repeated delete, got out=%q err=%v", out, err)
	}
}

func TestItemReadHandler_ListByItem(t *testing.T) {
	svc := newStubItemReadService("TAG-1")
	h := NewItemReadHandler(svc, zerolog.Nop())

	if _, err := svc.RecordScan(context.Background(), "TAG-1", time.Now()); err != nil {
		t.Fatalf("seed scan: %v", err)
	}

	out, err := h.ListByItem(context.Background(), envelope(t, transport.ItemReadListByItem, `{"itemId":5}`))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var snapshot struct {
		ItemID int64 `json:"itemId"`
		Reads  []struct {
			TagID string `json:"tagId"`
		} `json:"reads"`
	}
	decodeReply(t, out, transport.ItemReadSnapshotForItem, &snapshot)
	if snapshot.ItemID != 5 || len(snapshot.Reads) != 1 || snapshot.Reads[0].TagID != "TAG-1" {
		t.Errorf("unexpected snapshot: %+v", snapshot)
	}
}
