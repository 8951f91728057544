// internal/inventory/service.go
package inventory

import (
	"context"
	"time"
)

// CreateItemInput carries the fields of a new stock item.
type CreateItemInput struct {
	Name               string
	ItemNumber         string
	ManufacturerNumber string
	Barcode            string
	WholesalerID       string
	WholesalerItemNum  string
	InitialStocks      []Stock
	MinStocks          []Stock
}

// Service defines the interface for the inventory service. Mutations are
// synchronous against in-memory state; persistence is dispatched behind them.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput, actor Actor) (*Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context) []*Item

	ApplyStockChange(ctx context.Context, itemID, locationID string, kind EntryType, quantity int, actor Actor) (*Item, error)
	Transfer(ctx context.Context, itemID, fromLocationID, toLocationID string, quantity int, actor Actor) (*Item, error)
	SetMinStock(ctx context.Context, itemID, locationID string, quantity int, actor Actor) (*Item, error)
	RecordLabelPrinted(ctx context.Context, itemID string, actor Actor) error

	ArrangeReorder(ctx context.Context, itemID, locationID string, quantity int, actor Actor) (*Item, error)
	CancelArrangedReorder(ctx context.Context, itemID, locationID string, actor Actor) (*Item, error)
	CancelArrangedByWholesaler(ctx context.Context, wholesalerID, locationID string, actor Actor) (int, error)

	// Order-driven hooks, called by the orders service.
	AssociateOrder(ctx context.Context, itemID, locationID, orderID string) error
	DissociateOrder(ctx context.Context, itemID, locationID, orderID string) error
	MarkOrdered(ctx context.Context, itemID, locationID string, quantity int, orderID, orderNumber string, actor Actor) error
	BookReceipt(ctx context.Context, itemID, locationID string, quantity int, orderID, orderNumber string, final bool, actor Actor) error

	StockAt(ctx context.Context, itemID string, at time.Time, locationID string) (int, error)
}
