package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubReadRepo struct {
	reads     map[int64]*domain.ItemRead
	nextID    int64
	createErr error
}

func newStubReadRepo() *stubReadRepo {
	return &stubReadRepo{reads: make(map[int64]*domain.ItemRead)}
}

func (r *stubReadRepo) Create(_ context.Context, tagID string, readTime time.Time) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	r.nextID++
	r.reads[r.nextID] = &domain.ItemRead{ID: r.nextID, TagID: tagID, ReadTime: readTime}
	return r.nextID, nil
}

func (r *stubReadRepo) ByID(_ context.Context, id int64, includeDeleted bool) (*domain.ItemRead, error) {
	read, ok := r.reads[id]
	if !ok || (read.Deleted && !includeDeleted) {
		return nil, domain.ErrReadNotFound
	}
	copied := *read
	return &copied, nil
}

func (r *stubReadRepo) List(_ context.Context, includeDeleted bool) ([]domain.ItemRead, error) {
	var out []domain.ItemRead
	for _, read := range r.reads {
		if read.Deleted && !includeDeleted {
			continue
		}
		out = append(out, *read)
	}
	return out, nil
}

func (r *stubReadRepo) ListForTag(_ context.Context, tagID string, from, to time.Time) ([]domain.ItemRead, error) {
	var out []domain.ItemRead
	for _, read := range r.reads {
		if read.Deleted || read.TagID != tagID {
			continue
		}
		if read.ReadTime.Before(from) || read.ReadTime.After(to) {
			continue
		}
		out = append(out, *read)
	}
	return out, nil
}

func (r *stubReadRepo) Update(_ context.Context, id int64, tagID string, readTime time.Time) (bool, error) {
	read, ok := r.reads[id]
	if !ok || read.Deleted {
		return false, nil
	}
	read.TagID, read.ReadTime = tagID, readTime
	return true, nil
}

func (r *stubReadRepo) SoftDelete(_ context.Context, id int64) (bool, error) {
	read, ok := r.reads[id]
	if !ok || read.Deleted {
		return false, nil
	}
	read.Deleted = true
	return true, nil
}

type stubDebouncer struct {
	allow bool
	err   error
	calls int
}

func (d *stubDebouncer) ShouldRecord(context.Context, string, time.Time) (bool, error) {
	d.calls++
	return d.allow, d.err
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func newReadSvc(items *stubItemRepo, reads *stubReadRepo, debounce ports.ScanDebouncer) ports.ItemReadService {
	return NewItemReadService(items, reads, debounce, zerolog.Nop())
}

func TestItemReadService_RecordScan_HappyPath(t *testing.T) {
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	reads := newStubReadRepo()

	svc := newReadSvc(items, reads, &stubDebouncer{allow: true})
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	read, err := svc.RecordScan(context.Background(), "TAG-10", at)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if read == nil || read.TagID != "TAG-10" || !read.ReadTime.Equal(at) {
		t.Errorf("unexpected read: %+v", read)
	}
	if len(reads.reads) != 1 {
		t.Errorf("expected one stored read, got %d", len(reads.reads))
	}
}

func TestItemReadService_RecordScan_Debounced(t *testing.T) {
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	reads := newStubReadRepo()

	svc := newReadSvc(items, reads, &stubDebouncer{allow: false})

	read, err := svc.RecordScan(context.Background(), "TAG-10", time.Now())
	if err != nil {
		t.Fatalf("expected silent drop, got: %v", err)
	}
	if read != nil {
		t.Errorf("expected nil read for debounced scan, got: %+v", read)
	}
	if len(reads.reads) != 0 {
		t.Error("debounced scan must not be stored")
	}
}

func TestItemReadService_RecordScan_UnknownTag(t *testing.T) {
	items := newStubItemRepo()
	reads := newStubReadRepo()

	svc := newReadSvc(items, reads, &stubDebouncer{allow: true})

	read, err := svc.RecordScan(context.Background(), "TAG-MISSING", time.Now())
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got: %v", err)
	}
	if read != nil {
		t.Errorf("expected nil read, got: %+v", read)
	}
	if len(reads.reads) != 0 {
		t.Error("unknown tag scan must not be stored")
	}
}

func TestItemReadService_RecordScan_DeletedItemCountsAsUnknown(t *testing.T) {
	items := newStubItemRepo()
	items.seed(10, "TAG-10", true)
	reads := newStubReadRepo()

	svc := newReadSvc(items, reads, &stubDebouncer{allow: true})
	if _, err := svc.RecordScan(context.Background(), "TAG-10", time.Now()); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound for soft-deleted item, got: %v", err)
	}
}

func TestItemReadService_RecordScan_DebounceErrorRecordsAnyway(t *testing.T) {
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	reads := newStubReadRepo()

	svc := newReadSvc(items, reads, &stubDebouncer{allow: false, err: errors.New("redis down")})

	read, err := svc.RecordScan(context.Background(), "TAG-10", time.Now())
	if err != nil || read == nil {
		t.Fatalf("expected scan recorded despite debounce failure, got read=%v err=%v", read, err)
	}
}

func TestItemReadService_RecordScan_ZeroTimeDefaultsToNow(t *testing.T) {
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	reads := newStubReadRepo()

	svc := newReadSvc(items, reads, &stubDebouncer{allow: true})
	before := time.Now().UTC()

	read, err := svc.RecordScan(context.Background(), "TAG-10", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if read.ReadTime.Before(before) || read.ReadTime.After(time.Now().UTC()) {
		t.Errorf("expected read time to default to now, got: %v", read.ReadTime)
	}
}

func TestItemReadService_ListForItem_WindowsOnTag(t *testing.T) {
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	reads := newStubReadRepo()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, _ = reads.Create(context.Background(), "TAG-10", base)
	_, _ = reads.Create(context.Background(), "TAG-10", base.Add(time.Hour))
	_, _ = reads.Create(context.Background(), "TAG-OTHER", base)

	svc := newReadSvc(items, reads, &stubDebouncer{allow: true})

	got, err := svc.ListForItem(context.Background(), 10, base, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].TagID != "TAG-10" {
		t.Errorf("expected the single in-window read of TAG-10, got: %+v", got)
	}
}

func TestItemReadService_UpdateRead_RejectsUnknownTag(t *testing.T) {
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	reads := newStubReadRepo()
	id, _ := reads.Create(context.Background(), "TAG-10", time.Now())

	svc := newReadSvc(items, reads, &stubDebouncer{allow: true})
	if _, err := svc.UpdateRead(context.Background(), id, "TAG-MISSING", time.Now()); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Memory debouncer
// ---------------------------------------------------------------------------

func TestMemoryDebouncer_Window(t *testing.T) {
	d := NewMemoryDebouncer()
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		tag  string
		at   time.Time
		want bool
	}{
		{"first scan", "TAG-A", t0, true},
		{"same tag inside window", "TAG-A", t0.Add(time.Second), false},
		{"other tag inside window", "TAG-B", t0.Add(time.Second), true},
		{"back to first tag, window reset by other tag", "TAG-A", t0.Add(1500 * time.Millisecond), true},
	}
	for _, tc := range cases {
		got, err := d.ShouldRecord(ctx, tc.tag, tc.at)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMemoryDebouncer_WindowBoundary(t *testing.T) {
	d := NewMemoryDebouncer()
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if ok, _ := d.ShouldRecord(ctx, "TAG-A", t0); !ok {
		t.Fatal("first scan must record")
	}
	// exactly the window apart records again
	if ok, _ := d.ShouldRecord(ctx, "TAG-A", t0.Add(DebounceWindow)); !ok {
		t.Error("scan exactly one window later must record")
	}
	if ok, _ := d.ShouldRecord(ctx, "TAG-A", t0.Add(DebounceWindow).Add(3*time.Second)); !ok {
		t.Error("scan well past the window must record")
	}
}
