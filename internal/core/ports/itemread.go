package ports

import (
	"context"
	"time"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

// ItemReadRepository persists the append-only scan log.
type ItemReadRepository interface {
	Create(ctx context.Context, tagID string, readTime time.Time) (int64, error)
	ByID(ctx context.Context, id int64, includeDeleted bool) (*domain.ItemRead, error)
	List(ctx context.Context, includeDeleted bool) ([]domain.ItemRead, error)
	ListForTag(ctx context.Context, tagID string, from, to time.Time) ([]domain.ItemRead, error)
	Update(ctx context.Context, id int64, tagID string, readTime time.Time) (bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
}

// ScanDebouncer suppresses bounced scans. ShouldRecord reports whether the
// scan of tagID at the given time is far enough from the last recorded scan,
// and when it is, makes it the new last scan.
type ScanDebouncer interface {
	ShouldRecord(ctx context.Context, tagID string, at time.Time) (bool, error)
}

// ItemReadService records and queries device scans.
type ItemReadService interface {
	// RecordScan appends a scan. It returns (nil, nil) when the scan was
	// debounced and (nil, domain.ErrItemNotFound) when the tag does not
	// resolve to a live item.
	RecordScan(ctx context.Context, tagID string, at time.Time) (*domain.ItemRead, error)
	UpdateRead(ctx context.Context, id int64, tagID string, at time.Time) (*domain.ItemRead, error)
	DeleteRead(ctx context.Context, id int64) (bool, error)
	ListActive(ctx context.Context) ([]domain.ItemRead, error)
	// ListForItem lists reads of the item's tag within [from, to]. Zero times
	// default to the epoch and now respectively.
	ListForItem(ctx context.Context, itemID int64, from, to time.Time) ([]domain.ItemRead, error)
}
