package domain

import "time"

// ItemRead is one entry in the append-only scan log. Rows are never updated
// by devices; only the desktop client may correct or soft-delete them.
type ItemRead struct {
	ID       int64     `json:"readId" db:"read_id"`
	TagID    string    `json:"tagId" db:"tag_id"`
	ReadTime time.Time `json:"readTime" db:"read_time"`
	Deleted  bool      `json:"deleted" db:"deleted"`
}
