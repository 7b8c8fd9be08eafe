package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
)

// DebounceWindow is how close two scans of the same tag may be before the
// second one is discarded as a bounce.
const DebounceWindow = 2 * time.Second

type itemReadService struct {
	items    ports.ItemRepository
	reads    ports.ItemReadRepository
	debounce ports.ScanDebouncer
	log      zerolog.Logger
}

// NewItemReadService returns an ItemReadService implementation.
func NewItemReadService(
	items ports.ItemRepository,
	reads ports.ItemReadRepository,
	debounce ports.ScanDebouncer,
	log zerolog.Logger,
) ports.ItemReadService {
	return &itemReadService{items: items, reads: reads, debounce: debounce, log: log}
}

// RecordScan appends a scan to the read log. Scans within DebounceWindow of
// the last recorded scan of the same tag return (nil, nil); scans of tags
// that do not resolve to a live item return (nil, domain.ErrItemNotFound).
func (s *itemReadService) RecordScan(ctx context.Context, tagID string, at time.Time) (*domain.ItemRead, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	ok, err := s.debounce.ShouldRecord(ctx, tagID, at)
	if err != nil {
		s.log.Warn().Err(err).Str("tag_id", tagID).Msg("debounce check failed, recording anyway")
	} else if !ok {
		s.log.Debug().Str("tag_id", tagID).Time("at", at).Msg("duplicate scan ignored")
		return nil, nil
	}

	if _, err := s.items.ByTag(ctx, tagID, false); err != nil {
		s.log.Warn().Str("tag_id", tagID).Msg("unknown tag scanned")
		return nil, domain.ErrItemNotFound
	}

	id, err := s.reads.Create(ctx, tagID, at)
	if err != nil {
		return nil, fmt.Errorf("record scan %q: %w", tagID, err)
	}

	s.log.Info().Str("tag_id", tagID).Int64("read_id", id).Msg("scan recorded")
	return &domain.ItemRead{ID: id, TagID: tagID, ReadTime: at}, nil
}

// UpdateRead corrects a logged read. The new tag must resolve to a live item.
func (s *itemReadService) UpdateRead(ctx context.Context, id int64, tagID string, at time.Time) (*domain.ItemRead, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if _, err := s.items.ByTag(ctx, tagID, false); err != nil {
		return nil, fmt.Errorf("update read %d: %w", id, err)
	}

	ok, err := s.reads.Update(ctx, id, tagID, at)
	if err != nil {
		return nil, fmt.Errorf("update read %d: %w", id, err)
	}
	if !ok {
		return nil, domain.ErrReadNotFound
	}
	return s.reads.ByID(ctx, id, true)
}

func (s *itemReadService) DeleteRead(ctx context.Context, id int64) (bool, error) {
	return s.reads.SoftDelete(ctx, id)
}

func (s *itemReadService) ListActive(ctx context.Context) ([]domain.ItemRead, error) {
	return s.reads.List(ctx, false)
}

// ListForItem lists reads of the item's tag in [from, to]. Zero bounds default
// to the epoch and now.
func (s *itemReadService) ListForItem(ctx context.Context, itemID int64, from, to time.Time) ([]domain.ItemRead, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}

	item, err := s.items.ByID(ctx, itemID, false)
	if err != nil {
		return nil, fmt.Errorf("list reads for item %d: %w", itemID, err)
	}
	return s.reads.ListForTag(ctx, item.TagID, from, to)
}

// memoryDebouncer keeps the single most-recently-recorded tag and time. The
// debounce is global, not per-tag: alternating rapid scans of two tags are
// all recorded. Safe for concurrent use, though all writes arrive from the
// dispatcher worker.
type memoryDebouncer struct {
	mu       sync.Mutex
	lastTag  string
	lastTime time.Time
}

// NewMemoryDebouncer returns the in-process ScanDebouncer used when no Redis
// is configured.
func NewMemoryDebouncer() ports.ScanDebouncer {
	return &memoryDebouncer{}
}

func (d *memoryDebouncer) ShouldRecord(_ context.Context, tagID string, at time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if tagID == d.lastTag && at.Sub(d.lastTime) < DebounceWindow {
		return false, nil
	}
	d.lastTag = tagID
	d.lastTime = at
	return true, nil
}
