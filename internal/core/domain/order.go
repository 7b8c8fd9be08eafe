package domain

import "time"

// Order bundles items handed to a customer for a period of time.
// CreatedDate is set once at creation and never changed afterwards.
type Order struct {
	ID          int64      `json:"orderId" db:"order_id"`
	CreatedDate time.Time  `json:"createdDate" db:"created_date"`
	StartDate   *time.Time `json:"startDate,omitempty" db:"start_date"`
	EndDate     *time.Time `json:"endDate,omitempty" db:"end_date"`
	CustomerID  *int64     `json:"customerId,omitempty" db:"customer_id"`
	LoggedByID  *int64     `json:"loggedById,omitempty" db:"logged_by_id"`
	Deleted     bool       `json:"deleted" db:"deleted"`
}

// OrderItem links one item to one order. The pair (OrderID, ItemID) is the
// composite key; a row with Deleted=false is an active relation, and an item
// may have at most one active relation at any time.
type OrderItem struct {
	OrderID int64 `json:"orderId" db:"order_id"`
	ItemID  int64 `json:"itemId" db:"item_id"`
	Deleted bool  `json:"deleted" db:"deleted"`
}
