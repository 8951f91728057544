// internal/inventory/domain.go
package inventory

import (
	"time"

	"github.com/google/uuid"
)

// EntryType classifies a change-log entry. Only a subset of types mutates
// stock during reconstruction; the rest are audit records.
type EntryType string

const (
	EntryInitial          EntryType = "initial"
	EntryIn               EntryType = "in"
	EntryOut              EntryType = "out"
	EntryInventory        EntryType = "inventory"
	EntryTransfer         EntryType = "transfer"
	EntryUpdate           EntryType = "update"
	EntryReordered        EntryType = "reordered"
	EntryReorderArranged  EntryType = "reorder-arranged"
	EntryReorderCancelled EntryType = "reorder-cancelled"
	EntryReceived         EntryType = "received"
	EntryLabelPrinted     EntryType = "label-printed"
)

// ReorderState is the lifecycle position of a pending reorder.
type ReorderState string

const (
	ReorderArranged ReorderState = "arranged"
	ReorderOrdered  ReorderState = "ordered"
)

// Stock is a quantity at one location. Quantities are never negative.
type Stock struct {
	LocationID string `json:"location_id" bson:"location_id"`
	Quantity   int    `json:"quantity" bson:"quantity"`
}

// ReorderStatus tracks the arrange-order-receive lifecycle for one
// (item, location) pair. Quantity is the outstanding quantity to order, not a
// cumulative history. At most one ReorderStatus exists per location.
type ReorderStatus struct {
	Status     ReorderState `json:"status" bson:"status"`
	ArrangedAt time.Time    `json:"arranged_at" bson:"arranged_at"`
	OrderedAt  *time.Time   `json:"ordered_at,omitempty" bson:"ordered_at,omitempty"`
	Quantity   int          `json:"quantity" bson:"quantity"`
	OrderID    string       `json:"order_id,omitempty" bson:"order_id,omitempty"`
}

// ChangeLogEntry is one immutable record in an item's audit trail. Seq is a
// per-item monotonic sequence number; replaying entries ordered by
// (Date, Seq) up to a cutoff reproduces the stock state at that time, even
// when several entries of one operation share a timestamp.
type ChangeLogEntry struct {
	ID             uuid.UUID `json:"id" bson:"id"`
	Seq            int       `json:"seq" bson:"seq"`
	Date           time.Time `json:"date" bson:"date"`
	UserID         string    `json:"user_id" bson:"user_id"`
	UserName       string    `json:"user_name" bson:"user_name"`
	Type           EntryType `json:"type" bson:"type"`
	Quantity       int       `json:"quantity,omitempty" bson:"quantity,omitempty"`
	NewStock       *int      `json:"new_stock,omitempty" bson:"new_stock,omitempty"`
	LocationID     string    `json:"location_id,omitempty" bson:"location_id,omitempty"`
	FromLocationID string    `json:"from_location_id,omitempty" bson:"from_location_id,omitempty"`
	ToLocationID   string    `json:"to_location_id,omitempty" bson:"to_location_id,omitempty"`
	Details        string    `json:"details,omitempty" bson:"details,omitempty"`
	OrderID        string    `json:"order_id,omitempty" bson:"order_id,omitempty"`
}

// Actor identifies the user an entry is attributed to.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is a stock-bearing article tracked across locations.
type Item struct {
	ID                 string                    `json:"id" bson:"_id"`
	Name               string                    `json:"name" bson:"name"`
	ItemNumber         string                    `json:"item_number" bson:"item_number"`
	ManufacturerNumber string                    `json:"manufacturer_number,omitempty" bson:"manufacturer_number,omitempty"`
	Barcode            string                    `json:"barcode,omitempty" bson:"barcode,omitempty"`
	WholesalerID       string                    `json:"wholesaler_id,omitempty" bson:"wholesaler_id,omitempty"`
	WholesalerItemNum  string                    `json:"wholesaler_item_number,omitempty" bson:"wholesaler_item_number,omitempty"`
	Stocks             []Stock                   `json:"stocks" bson:"stocks"`
	MinStocks          []Stock                   `json:"min_stocks" bson:"min_stocks"`
	ReorderStatuses    map[string]*ReorderStatus `json:"reorder_statuses,omitempty" bson:"reorder_statuses,omitempty"`
	Changelog          []ChangeLogEntry          `json:"changelog" bson:"changelog"`
	LastInventoriedAt  map[string]time.Time      `json:"last_inventoried_at,omitempty" bson:"last_inventoried_at,omitempty"`
}

// StockAt returns the quantity at a location, 0 when the location is unknown.
func (i *Item) StockAt(locationID string) int {
	for _, s := range i.Stocks {
		if s.LocationID == locationID {
			return s.Quantity
		}
	}
	return 0
}

// MinStockAt returns the minimum stock configured for a location, default 0.
func (i *Item) MinStockAt(locationID string) int {
	for _, s := range i.MinStocks {
		if s.LocationID == locationID {
			return s.Quantity
		}
	}
	return 0
}

func (i *Item) setStock(locationID string, quantity int) {
	for idx := range i.Stocks {
		if i.Stocks[idx].LocationID == locationID {
			i.Stocks[idx].Quantity = quantity
			return
		}
	}
	i.Stocks = append(i.Stocks, Stock{LocationID: locationID, Quantity: quantity})
}

func (i *Item) setMinStock(locationID string, quantity int) {
	for idx := range i.MinStocks {
		if i.MinStocks[idx].LocationID == locationID {
			i.MinStocks[idx].Quantity = quantity
			return
		}
	}
	i.MinStocks = append(i.MinStocks, Stock{LocationID: locationID, Quantity: quantity})
}

// Clone returns a deep copy. Mutation functions operate on clones so a failed
// validation never leaves a half-changed item behind.
func (i *Item) Clone() *Item {
	clone := *i
	clone.Stocks = append([]Stock(nil), i.Stocks...)
	clone.MinStocks = append([]Stock(nil), i.MinStocks...)
	clone.Changelog = append([]ChangeLogEntry(nil), i.Changelog...)
	if i.ReorderStatuses != nil {
		clone.ReorderStatuses = make(map[string]*ReorderStatus, len(i.ReorderStatuses))
		for loc, rs := range i.ReorderStatuses {
			copied := *rs
			clone.ReorderStatuses[loc] = &copied
		}
	}
	if i.LastInventoriedAt != nil {
		clone.LastInventoriedAt = make(map[string]time.Time, len(i.LastInventoriedAt))
		for loc, t := range i.LastInventoriedAt {
			clone.LastInventoriedAt[loc] = t
		}
	}
	return &clone
}
