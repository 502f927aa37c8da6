// internal/circulation/domain.go
package circulation

import (
	"strconv"

	"libranet/internal/catalog"
)

const streamType = "item"

// Event types recorded in an item's history.
const (
	EventItemAdded    = "ItemAdded"
	EventItemBorrowed = "ItemBorrowed"
	EventItemReturned = "ItemReturned"
)

// ItemAddedEvent is recorded when an item is registered with the catalog.
type ItemAddedEvent struct {
	ItemID int              `json:"item_id"`
	Type   catalog.ItemType `json:"type"`
	Title  string           `json:"title"`
	Author string           `json:"author"`
}

// ItemBorrowedEvent is recorded when a borrow succeeds.
type ItemBorrowedEvent struct {
	ItemID int     `json:"item_id"`
	Days   int     `json:"days"`
	Fine   float64 `json:"fine"`
}

// ItemReturnedEvent is recorded when a return succeeds.
type ItemReturnedEvent struct {
	ItemID   int     `json:"item_id"`
	LateDays int     `json:"late_days"`
	Fine     float64 `json:"fine"`
}

func streamID(itemID int) string {
	return "item-" + strconv.Itoa(itemID)
}
