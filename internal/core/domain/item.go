package domain

// Position is the physical location state of an item.
type Position string

const (
	PositionHome          Position = "HOME"
	PositionInTransitOut  Position = "IN_TRANSIT_OUT"
	PositionDelivered     Position = "DELIVERED"
	PositionInTransitBack Position = "IN_TRANSIT_RETURN"
)

// ParsePosition maps a wire string to a Position. Unknown or empty input
// falls back to HOME, matching what handheld scanners report by default.
func ParsePosition(s string) Position {
	switch Position(s) {
	case PositionInTransitOut, PositionDelivered, PositionInTransitBack, PositionHome:
		return Position(s)
	default:
		return PositionHome
	}
}

// Positions lists all positions in a stable order, used for count snapshots.
func Positions() []Position {
	return []Position{PositionHome, PositionInTransitOut, PositionDelivered, PositionInTransitBack}
}

// Item is a physically tagged asset.
type Item struct {
	ID        int64    `json:"itemId" db:"item_id"`
	TagID     string   `json:"tagId" db:"tag_id"`
	Position  Position `json:"position" db:"position"`
	IsOverdue bool     `json:"isOverdue" db:"is_overdue"`
	Deleted   bool     `json:"deleted" db:"deleted"`
}
