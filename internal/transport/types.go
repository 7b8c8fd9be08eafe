package transport

// Message type catalogue, family.Verb. Inbound requests on the left column
// of each family, outbound responses on the right.
const (
	OrderList   = "Order.List"
	OrderCreate = "Order.Create"
	OrderUpdate = "Order.Update"
	OrderDelete = "Order.Delete"

	OrderSnapshot = "Order.Snapshot"
	OrderUpsert   = "Order.Upsert"

	ItemList   = "Item.List"
	ItemCreate = "Item.Create"
	ItemUpdate = "Item.Update"
	ItemDelete = "Item.Delete"

	ItemSnapshot = "Item.Snapshot"
	ItemUpsert   = "Item.Upsert"
	ItemDeleted  = "Item.Deleted"

	OrderItemList           = "OrderItem.List"
	OrderItemCreate         = "OrderItem.Create"
	OrderItemUpdate         = "OrderItem.Update"
	OrderItemMove           = "OrderItem.Move"
	OrderItemDelete         = "OrderItem.Delete"
	OrderItemListByOrder    = "OrderItem.ListByOrder"
	OrderItemPositionCounts = "OrderItem.PositionCounts"

	OrderItemSnapshot         = "OrderItem.Snapshot"
	OrderItemUpsert           = "OrderItem.Upsert"
	OrderItemDeleted          = "OrderItem.Deleted"
	OrderItemSnapshotForOrder = "OrderItem.SnapshotForOrder"

	ItemReadList       = "ItemRead.List"
	ItemReadCreate     = "ItemRead.Create"
	ItemReadUpdate     = "ItemRead.Update"
	ItemReadDelete     = "ItemRead.Delete"
	ItemReadListByItem = "ItemRead.ListByItem"

	ItemReadSnapshot        = "ItemRead.Snapshot"
	ItemReadUpsert          = "ItemRead.Upsert"
	ItemReadDeleted         = "ItemRead.Deleted"
	ItemReadSnapshotForItem = "ItemRead.SnapshotForItem"

	// BrokerItemReadCreate is the routing tag the device bridge stamps on
	// scan publications; it shares the ItemRead.Create handler.
	BrokerItemReadCreate = "BrokerItemRead.Create"

	PersonList   = "Person.List"
	PersonCreate = "Person.Create"
	PersonUpdate = "Person.Update"
	PersonDelete = "Person.Delete"

	PersonSnapshot = "Person.Snapshot"
	PersonUpsert   = "Person.Upsert"
	PersonDeleted  = "Person.Deleted"

	UserList   = "User.List"
	UserCreate = "User.Create"
	UserUpdate = "User.Update"
	UserDelete = "User.Delete"

	UserSnapshot = "User.Snapshot"
	UserUpsert   = "User.Upsert"
	UserDeleted  = "User.Deleted"
)
